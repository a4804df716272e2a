package service

import (
	"context"
	"testing"
	"time"

	"settlement_backend/internal/timeline/domain"
	"settlement_backend/internal/timeline/repository"
	"settlement_backend/platform/apperr"
	"settlement_backend/platform/clock"

	"github.com/google/uuid"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

type fakeStore struct {
	timelines []repository.TransactionTimeline
}

func (f *fakeStore) GetTimeline(_ context.Context, transactionID uuid.UUID) (*repository.TransactionTimeline, error) {
	for i := range f.timelines {
		if f.timelines[i].TransactionID == transactionID {
			return &f.timelines[i], nil
		}
	}
	return nil, apperr.NotFound("transaction not found")
}

func (f *fakeStore) ListOpenTimelines(_ context.Context) ([]repository.TransactionTimeline, error) {
	return f.timelines, nil
}

func newService(timelines ...repository.TransactionTimeline) *Service {
	return New(&fakeStore{timelines: timelines}, clock.Fixed{Instant: testNow})
}

func TestGetTimeline_DerivesStateOnRead(t *testing.T) {
	id := uuid.New()
	svc := newService(repository.TransactionTimeline{
		TransactionID:   id,
		PropertyAddress: "3/18 Harbour St, Wollongong NSW",
		Status:          "active",
		Milestones: []domain.Milestone{
			{Name: domain.MilestoneContractSigned, TargetDate: ptr(testNow.AddDate(0, 0, -14)), CompletedAt: ptr(testNow.AddDate(0, 0, -14))},
			{Name: domain.MilestoneCoolingOffExpiry, TargetDate: ptr(testNow.AddDate(0, 0, -9))},
			{Name: domain.MilestoneFinanceApprovalDue, TargetDate: ptr(testNow.AddDate(0, 0, 7)), Critical: true},
			{Name: domain.MilestoneInspectionDue, TargetDate: nil},
			{Name: domain.MilestoneSettlement, TargetDate: ptr(testNow.AddDate(0, 0, 28)), Critical: true},
		},
	})

	resp, err := svc.GetTimeline(context.Background(), id)
	if err != nil {
		t.Fatalf("GetTimeline: %v", err)
	}

	if len(resp.Milestones) != 5 {
		t.Fatalf("got %d milestones, want 5", len(resp.Milestones))
	}
	if resp.NextMilestone == nil || resp.NextMilestone.Name != domain.MilestoneFinanceApprovalDue {
		t.Fatalf("next milestone: got %v", resp.NextMilestone)
	}
	if len(resp.OverdueMilestones) != 0 {
		t.Fatalf("overdue: got %v, want none", resp.OverdueMilestones)
	}
	if resp.Progress != 0.4 {
		t.Fatalf("progress: got %v, want 0.4", resp.Progress)
	}
}

func TestGetTimeline_NotFound(t *testing.T) {
	svc := newService()
	_, err := svc.GetTimeline(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpcomingMilestones_WindowFilter(t *testing.T) {
	svc := newService(repository.TransactionTimeline{
		TransactionID:   uuid.New(),
		PropertyAddress: "12 Acacia Ave, Chatswood NSW",
		Status:          "active",
		Milestones: []domain.Milestone{
			{Name: domain.MilestoneFinanceApprovalDue, TargetDate: ptr(testNow.AddDate(0, 0, 3))},
			{Name: domain.MilestoneSettlement, TargetDate: ptr(testNow.AddDate(0, 0, 30))},
			{Name: domain.MilestoneInspectionDue, TargetDate: nil},
		},
	})

	resp, err := svc.UpcomingMilestones(context.Background(), 7)
	if err != nil {
		t.Fatalf("UpcomingMilestones: %v", err)
	}

	if resp.Total != 1 {
		t.Fatalf("got %d flagged, want 1: %+v", resp.Total, resp.Items)
	}
	if resp.Items[0].Milestone.Name != domain.MilestoneFinanceApprovalDue {
		t.Fatalf("got %q", resp.Items[0].Milestone.Name)
	}
}

func TestOverdueMilestones_AcrossTransactions(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	svc := newService(
		repository.TransactionTimeline{
			TransactionID: first,
			Status:        "active",
			Milestones: []domain.Milestone{
				{Name: domain.MilestoneFinanceApprovalDue, TargetDate: ptr(testNow.AddDate(0, 0, -2))},
			},
		},
		repository.TransactionTimeline{
			TransactionID: second,
			Status:        "negotiating",
			Milestones: []domain.Milestone{
				// Elapses as completed, never overdue.
				{Name: domain.MilestoneCoolingOffExpiry, TargetDate: ptr(testNow.AddDate(0, 0, -2))},
				{Name: domain.MilestoneSettlement, TargetDate: ptr(testNow.AddDate(0, 0, -1))},
			},
		},
	)

	resp, err := svc.OverdueMilestones(context.Background())
	if err != nil {
		t.Fatalf("OverdueMilestones: %v", err)
	}

	if resp.Total != 2 {
		t.Fatalf("got %d flagged, want 2: %+v", resp.Total, resp.Items)
	}
}
