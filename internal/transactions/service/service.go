package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"settlement_backend/internal/events"
	timelinedomain "settlement_backend/internal/timeline/domain"
	"settlement_backend/internal/transactions/repository"
	"settlement_backend/internal/transactions/transport"
	"settlement_backend/platform/apperr"
	"settlement_backend/platform/clock"

	"github.com/google/uuid"
)

// ReminderScheduler queues an early warning ahead of a critical milestone's
// target date. A nil scheduler disables reminders.
type ReminderScheduler interface {
	ScheduleMilestoneReminder(ctx context.Context, transactionID uuid.UUID, propertyAddress, milestone string, targetDate, remindAt time.Time) error
}

// reminderLead is how far ahead of a critical milestone's target date the
// reminder fires.
const reminderLead = 24 * time.Hour

// Service provides business logic for property transactions
type Service struct {
	repo              *repository.Repository
	eventBus          events.Bus
	clk               clock.Clock
	reminders         ReminderScheduler
	inspectionDueDays int
}

// New creates a new transactions service. inspectionDueDays is the default
// offset from contract date for the Inspection Due milestone; zero or negative
// leaves it unscheduled until the workflow engine books inspections.
func New(repo *repository.Repository, eventBus events.Bus, clk clock.Clock, reminders ReminderScheduler, inspectionDueDays int) *Service {
	return &Service{
		repo:              repo,
		eventBus:          eventBus,
		clk:               clk,
		reminders:         reminders,
		inspectionDueDays: inspectionDueDays,
	}
}

// Repository exposes the underlying repository for modules that layer narrow
// read interfaces over it (timeline, diligence).
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// Create registers a new property transaction and seeds its milestone
// timeline in canonical order.
func (s *Service) Create(ctx context.Context, req transport.CreateTransactionRequest) (*transport.TransactionResponse, error) {
	if req.FinanceClause && req.FinanceApprovalDue == nil {
		return nil, apperr.Validation("financeApprovalDue is required when financeClause is set")
	}
	if !req.FinanceClause && req.FinanceApprovalDue != nil {
		return nil, apperr.Validation("financeApprovalDue is only allowed when financeClause is set")
	}
	if req.FinanceClause && req.FinanceApprovalDue.Before(req.ContractDate) {
		return nil, apperr.Validation("financeApprovalDue must not precede contractDate")
	}

	now := s.clk.Now()
	txn := &repository.Transaction{
		ID:                 uuid.New(),
		PropertyID:         req.PropertyID,
		PropertyAddress:    req.PropertyAddress,
		PurchasePriceCents: req.PurchasePriceCents,
		PropertyType:       string(req.PropertyType),
		IsStrata:           req.IsStrata,
		BuyerID:            req.BuyerID,
		ContractDate:       req.ContractDate,
		CoolingOffExpiry:   req.CoolingOffExpiry,
		FinanceClause:      req.FinanceClause,
		FinanceApprovalDue: req.FinanceApprovalDue,
		SettlementDate:     req.SettlementDate,
		Status:             string(transport.TransactionStatusActive),
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	milestones := seedMilestones(txn, s.inspectionDueDays)
	if err := s.repo.Create(ctx, txn, milestones); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.TransactionCreated{
			BaseEvent:     events.NewBaseEvent(),
			TransactionID: txn.ID,
			PropertyID:    txn.PropertyID,
			BuyerID:       txn.BuyerID,
			ContractDate:  txn.ContractDate,
		})
	}

	s.scheduleReminders(ctx, txn, milestones)

	resp := txn.ToResponse()
	return &resp, nil
}

// scheduleReminders queues an early warning for every critical milestone whose
// target is far enough out. Reminders are advisory and must not fail creation.
func (s *Service) scheduleReminders(ctx context.Context, txn *repository.Transaction, milestones []repository.Milestone) {
	if s.reminders == nil {
		return
	}

	now := s.clk.Now()
	for _, ms := range milestones {
		if !ms.Critical || ms.TargetDate == nil || ms.CompletedAt != nil {
			continue
		}
		remindAt := ms.TargetDate.Add(-reminderLead)
		if !remindAt.After(now) {
			continue
		}
		_ = s.reminders.ScheduleMilestoneReminder(ctx, txn.ID, txn.PropertyAddress, ms.Name, *ms.TargetDate, remindAt)
	}
}

// seedMilestones builds the canonical five milestones for a new transaction.
// A transaction without a finance clause gets its Finance Approval Due
// milestone completed immediately so it never reads as outstanding.
func seedMilestones(txn *repository.Transaction, inspectionDueDays int) []repository.Milestone {
	milestones := make([]repository.Milestone, 0, len(timelinedomain.CanonicalOrder))
	for i, name := range timelinedomain.CanonicalOrder {
		ms := repository.Milestone{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			Name:          name,
			Critical:      timelinedomain.IsCritical(name),
			SortOrder:     i,
		}

		switch name {
		case timelinedomain.MilestoneContractSigned:
			contractDate := txn.ContractDate
			ms.TargetDate = &contractDate
			ms.CompletedAt = &contractDate
		case timelinedomain.MilestoneCoolingOffExpiry:
			expiry := txn.CoolingOffExpiry
			ms.TargetDate = &expiry
		case timelinedomain.MilestoneFinanceApprovalDue:
			if txn.FinanceClause {
				ms.TargetDate = txn.FinanceApprovalDue
			} else {
				contractDate := txn.ContractDate
				ms.CompletedAt = &contractDate
			}
		case timelinedomain.MilestoneInspectionDue:
			// Planning default; the workflow engine retargets this to the
			// latest booked inspection date.
			if inspectionDueDays > 0 {
				due := txn.ContractDate.AddDate(0, 0, inspectionDueDays)
				ms.TargetDate = &due
			}
		case timelinedomain.MilestoneSettlement:
			ms.TargetDate = txn.SettlementDate
		}

		milestones = append(milestones, ms)
	}
	return milestones
}

// GetByID retrieves a single transaction
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.TransactionResponse, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := txn.ToResponse()
	return &resp, nil
}

// List retrieves transactions with pagination
func (s *Service) List(ctx context.Context, req transport.ListTransactionsRequest) (*transport.TransactionListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var status *string
	if req.Status != nil {
		value := string(*req.Status)
		status = &value
	}

	items, total, err := s.repo.List(ctx, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.TransactionResponse, 0, len(items))
	for i := range items {
		responses = append(responses, items[i].ToResponse())
	}

	return &transport.TransactionListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// allowedTransitions declares the legal status transitions. Settled and
// cancelled are terminal.
var allowedTransitions = map[transport.TransactionStatus][]transport.TransactionStatus{
	transport.TransactionStatusActive: {
		transport.TransactionStatusNegotiating,
		transport.TransactionStatusWithdrawn,
		transport.TransactionStatusSettled,
		transport.TransactionStatusCancelled,
	},
	transport.TransactionStatusNegotiating: {
		transport.TransactionStatusActive,
		transport.TransactionStatusWithdrawn,
		transport.TransactionStatusSettled,
		transport.TransactionStatusCancelled,
	},
	transport.TransactionStatusWithdrawn: {
		transport.TransactionStatusCancelled,
	},
	transport.TransactionStatusSettled:   {},
	transport.TransactionStatusCancelled: {},
}

// CanTransition reports whether a status change is legal.
func CanTransition(from, to transport.TransactionStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateStatus transitions the transaction's status, enforcing the transition
// table and the caller-supplied version for optimistic concurrency.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (*transport.TransactionResponse, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := transport.TransactionStatus(txn.Status)
	if from == req.Status {
		resp := txn.ToResponse()
		return &resp, nil
	}
	if !CanTransition(from, req.Status) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot transition from %s to %s", from, req.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, string(req.Status), req.Version, s.clk.Now()); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.TransactionStatusChanged{
			BaseEvent:     events.NewBaseEvent(),
			TransactionID: id,
			OldStatus:     string(from),
			NewStatus:     string(req.Status),
		})
	}

	return s.GetByID(ctx, id)
}

// ScheduleSettlement sets or moves the settlement date.
func (s *Service) ScheduleSettlement(ctx context.Context, id uuid.UUID, req transport.ScheduleSettlementRequest) (*transport.TransactionResponse, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transport.TransactionStatus(txn.Status).IsTerminal() {
		return nil, apperr.Conflict("transaction is in a terminal status")
	}
	if req.SettlementDate.Before(txn.ContractDate) {
		return nil, apperr.Validation("settlementDate must not precede contractDate")
	}

	if err := s.repo.ScheduleSettlement(ctx, id, req.SettlementDate, req.Version, s.clk.Now()); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// RecordSettlement records the actual settlement timestamp and moves the
// transaction to its terminal settled status. Also completes the Settlement
// milestone.
func (s *Service) RecordSettlement(ctx context.Context, id uuid.UUID, req transport.RecordSettlementRequest) (*transport.TransactionResponse, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := transport.TransactionStatus(txn.Status)
	if !CanTransition(from, transport.TransactionStatusSettled) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot settle a %s transaction", from))
	}

	if err := s.repo.RecordSettlement(ctx, id, req.SettledAt, req.Version, s.clk.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.CompleteMilestone(ctx, id, timelinedomain.MilestoneSettlement, req.SettledAt); err != nil {
		// The milestone may already be complete from an explicit completion;
		// that is not an error for settlement recording.
		if !apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.TransactionStatusChanged{
			BaseEvent:     events.NewBaseEvent(),
			TransactionID: id,
			OldStatus:     string(from),
			NewStatus:     string(transport.TransactionStatusSettled),
		})
	}

	return s.GetByID(ctx, id)
}

// CompleteMilestone marks a named milestone complete (set-once).
func (s *Service) CompleteMilestone(ctx context.Context, id uuid.UUID, name string) error {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if transport.TransactionStatus(txn.Status).IsTerminal() {
		return apperr.Conflict("transaction is in a terminal status")
	}

	now := s.clk.Now()
	if err := s.repo.CompleteMilestone(ctx, id, name, now); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.MilestoneCompleted{
			BaseEvent:     events.NewBaseEvent(),
			TransactionID: id,
			Milestone:     name,
			CompletedAt:   now,
		})
	}

	return nil
}
