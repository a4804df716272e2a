package service

import (
	"context"
	"time"

	"settlement_backend/internal/diligence/domain"
	inspectionservice "settlement_backend/internal/inspections/service"
	transactionservice "settlement_backend/internal/transactions/service"
	"settlement_backend/internal/transactions/transport"

	"github.com/google/uuid"
)

// TransactionsAdapter bridges the transactions module to the engine's
// Transactions port.
type TransactionsAdapter struct {
	svc *transactionservice.Service
}

// NewTransactionsAdapter wraps the transactions service for the engine.
func NewTransactionsAdapter(svc *transactionservice.Service) *TransactionsAdapter {
	return &TransactionsAdapter{svc: svc}
}

// Facts loads the transaction fields the engine reads.
func (a *TransactionsAdapter) Facts(ctx context.Context, id uuid.UUID) (*TransactionFacts, error) {
	txn, err := a.svc.Repository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransactionFacts{
		ID:                 txn.ID,
		PropertyAddress:    txn.PropertyAddress,
		PurchasePriceCents: txn.PurchasePriceCents,
		PropertyType:       txn.PropertyType,
		IsStrata:           txn.IsStrata,
		Status:             txn.Status,
		Terminal:           transport.TransactionStatus(txn.Status).IsTerminal(),
	}, nil
}

// SetMilestoneTarget sets a milestone's target date.
func (a *TransactionsAdapter) SetMilestoneTarget(ctx context.Context, id uuid.UUID, milestone string, target time.Time) error {
	return a.svc.Repository().SetMilestoneTarget(ctx, id, milestone, target)
}

// ApplyOutcome maps a finalized run outcome onto the transaction's status.
// A completed cycle leaves the transaction active and progressing toward
// settlement; negotiating and withdrawn outcomes move the status. The
// status update is a no-op when the transaction is already there.
func (a *TransactionsAdapter) ApplyOutcome(ctx context.Context, id uuid.UUID, outcomeStatus string) error {
	var target transport.TransactionStatus
	switch outcomeStatus {
	case domain.OutcomeNegotiating:
		target = transport.TransactionStatusNegotiating
	case domain.OutcomeWithdrawn:
		target = transport.TransactionStatusWithdrawn
	default:
		return nil
	}

	txn, err := a.svc.Repository().GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = a.svc.UpdateStatus(ctx, id, transport.UpdateStatusRequest{
		Status:  target,
		Version: txn.Version,
	})
	return err
}

var _ Transactions = (*TransactionsAdapter)(nil)

// InspectionsAdapter bridges the inspections module to the engine's
// Inspections port.
type InspectionsAdapter struct {
	svc *inspectionservice.Service
}

// NewInspectionsAdapter wraps the inspections service for the engine.
func NewInspectionsAdapter(svc *inspectionservice.Service) *InspectionsAdapter {
	return &InspectionsAdapter{svc: svc}
}

// Book plans and books the required inspections for a transaction.
func (a *InspectionsAdapter) Book(ctx context.Context, transactionID uuid.UUID, propertyType string, isStrata bool) ([]BookingSummary, error) {
	bookings, err := a.svc.BookInspections(ctx, inspectionservice.BookingProfile{
		TransactionID: transactionID,
		PropertyType:  propertyType,
		IsStrata:      isStrata,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		summaries = append(summaries, BookingSummary{
			InspectionType: b.InspectionType,
			ScheduledDate:  b.ScheduledDate,
		})
	}
	return summaries, nil
}

// AllResultsIn reports whether every booked inspection has a terminal result.
func (a *InspectionsAdapter) AllResultsIn(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	return a.svc.AllResultsIn(ctx, transactionID)
}

// Results returns the scorer's inputs. When an inspection was re-done only
// the most recent result per inspection type counts.
func (a *InspectionsAdapter) Results(ctx context.Context, transactionID uuid.UUID) ([]domain.ResultInput, error) {
	resp, err := a.svc.ListResults(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	// Results are ordered oldest first; later rows supersede earlier ones
	// for the same type while first-seen ordering is preserved.
	order := make([]string, 0, len(resp.Items))
	latest := make(map[string]domain.ResultInput, len(resp.Items))
	for _, item := range resp.Items {
		if _, seen := latest[item.InspectionType]; !seen {
			order = append(order, item.InspectionType)
		}
		latest[item.InspectionType] = domain.ResultInput{
			InspectionType:       item.InspectionType,
			OverallRating:        string(item.OverallRating),
			CriticalIssues:       item.CriticalIssues,
			EstimatedRepairCents: item.EstimatedRepairCents,
		}
	}

	inputs := make([]domain.ResultInput, 0, len(order))
	for _, inspectionType := range order {
		inputs = append(inputs, latest[inspectionType])
	}
	return inputs, nil
}

var _ Inspections = (*InspectionsAdapter)(nil)
