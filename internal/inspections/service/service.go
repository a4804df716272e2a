package service

import (
	"context"
	"fmt"
	"time"

	"settlement_backend/internal/events"
	"settlement_backend/internal/inspections/domain"
	"settlement_backend/internal/inspections/repository"
	"settlement_backend/internal/inspections/transport"
	"settlement_backend/platform/apperr"
	"settlement_backend/platform/clock"

	"github.com/google/uuid"
)

// BookingProfile carries the property facts the planner needs.
type BookingProfile struct {
	TransactionID uuid.UUID
	PropertyType  string
	IsStrata      bool
}

// Service provides business logic for inspection bookings and results
type Service struct {
	repo     *repository.Repository
	matcher  ProviderMatcher
	eventBus events.Bus
	clk      clock.Clock
}

// New creates a new inspections service
func New(repo *repository.Repository, matcher ProviderMatcher, eventBus events.Bus, clk clock.Clock) *Service {
	return &Service{
		repo:     repo,
		matcher:  matcher,
		eventBus: eventBus,
		clk:      clk,
	}
}

// BookInspections plans the required inspections for the profile and confirms
// a booking for each. Re-running with the same profile is idempotent: an
// existing booking for a type is kept, never duplicated.
func (s *Service) BookInspections(ctx context.Context, profile BookingProfile) ([]repository.Booking, error) {
	now := s.clk.Now()
	specs := domain.Plan(profile.PropertyType, profile.IsStrata)

	bookings := make([]repository.Booking, 0, len(specs))
	bookedTypes := make([]string, 0, len(specs))
	for _, spec := range specs {
		providerID, err := s.matcher.MatchProvider(ctx, spec.Type)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "provider matching failed", err)
		}

		booking := &repository.Booking{
			ID:             uuid.New(),
			TransactionID:  profile.TransactionID,
			InspectionType: string(spec.Type),
			ProviderID:     providerID,
			ScheduledDate:  now.Add(time.Duration(spec.OffsetDays) * 24 * time.Hour),
			CostCents:      spec.NominalCostCents,
			Status:         string(transport.BookingStatusBooked),
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		stored, created, err := s.repo.UpsertBooking(ctx, booking)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *stored)
		if created {
			bookedTypes = append(bookedTypes, stored.InspectionType)
		}
	}

	if len(bookedTypes) > 0 && s.eventBus != nil {
		s.eventBus.Publish(ctx, events.InspectionsBooked{
			BaseEvent:       events.NewBaseEvent(),
			TransactionID:   profile.TransactionID,
			InspectionTypes: bookedTypes,
		})
	}

	return bookings, nil
}

// RecordResult records an inspector's report against its booking. Results are
// immutable: a re-inspection inserts a new result row. The booking moves to
// completed (or failed for a "fail" rating is still a completed inspection;
// failed bookings are for inspections that never happened).
func (s *Service) RecordResult(ctx context.Context, transactionID uuid.UUID, req transport.RecordResultRequest) (*transport.ResultResponse, error) {
	inspectionType, err := domain.ParseInspectionType(req.InspectionType)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, transactionID, string(inspectionType))
	if err != nil {
		// A result for a type that was never planned indicates a
		// planner/result mismatch, not a missing resource.
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.BadRequest(fmt.Sprintf("no booking exists for inspection type %q", inspectionType))
		}
		return nil, err
	}

	criticalIssues := req.CriticalIssues
	if criticalIssues == nil {
		criticalIssues = []string{}
	}

	result := &repository.Result{
		ID:                   uuid.New(),
		TransactionID:        transactionID,
		BookingID:            booking.ID,
		InspectionType:       string(inspectionType),
		OverallRating:        string(req.OverallRating),
		CriticalIssues:       criticalIssues,
		EstimatedRepairCents: req.EstimatedRepairCents,
		ReportURL:            req.ReportURL,
		Summary:              req.Summary,
		RecordedAt:           s.clk.Now(),
	}

	if err := s.repo.InsertResult(ctx, result); err != nil {
		return nil, err
	}

	if booking.Status == string(transport.BookingStatusBooked) {
		if err := s.repo.UpdateBookingStatus(ctx, booking.ID, booking.Status, string(transport.BookingStatusCompleted), s.clk.Now()); err != nil {
			return nil, err
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.InspectionResultRecorded{
			BaseEvent:      events.NewBaseEvent(),
			TransactionID:  transactionID,
			InspectionType: string(inspectionType),
			OverallRating:  string(req.OverallRating),
		})
	}

	resp := result.ToResponse()
	return &resp, nil
}

// MarkBookingFailed records that an inspection never took place.
func (s *Service) MarkBookingFailed(ctx context.Context, transactionID uuid.UUID, rawType string) error {
	inspectionType, err := domain.ParseInspectionType(rawType)
	if err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, transactionID, string(inspectionType))
	if err != nil {
		return err
	}

	return s.repo.UpdateBookingStatus(ctx, booking.ID, booking.Status, string(transport.BookingStatusFailed), s.clk.Now())
}

// ListBookings returns a transaction's bookings
func (s *Service) ListBookings(ctx context.Context, transactionID uuid.UUID) (*transport.BookingListResponse, error) {
	bookings, err := s.repo.ListBookings(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookings[i].ToResponse())
	}
	return &transport.BookingListResponse{Items: items, Total: len(items)}, nil
}

// ListResults returns a transaction's recorded results
func (s *Service) ListResults(ctx context.Context, transactionID uuid.UUID) (*transport.ResultListResponse, error) {
	results, err := s.repo.ListResults(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.ResultResponse, 0, len(results))
	for i := range results {
		items = append(items, results[i].ToResponse())
	}
	return &transport.ResultListResponse{Items: items, Total: len(items)}, nil
}

// AllResultsIn reports whether every booking for the transaction has reached
// a terminal booking status (completed or failed). This gates the workflow's
// awaiting_results to risk_scored transition.
func (s *Service) AllResultsIn(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	bookings, err := s.repo.ListBookings(ctx, transactionID)
	if err != nil {
		return false, err
	}
	if len(bookings) == 0 {
		return false, nil
	}

	for _, b := range bookings {
		if b.Status != string(transport.BookingStatusCompleted) && b.Status != string(transport.BookingStatusFailed) {
			return false, nil
		}
	}
	return true, nil
}
