package service

import (
	"context"
	"time"

	"settlement_backend/internal/timeline/domain"
	"settlement_backend/internal/timeline/repository"
	"settlement_backend/internal/timeline/transport"
	"settlement_backend/platform/clock"

	"github.com/google/uuid"
)

// Store provides the timeline read model. Satisfied by the timeline
// repository; faked in tests.
type Store interface {
	GetTimeline(ctx context.Context, transactionID uuid.UUID) (*repository.TransactionTimeline, error)
	ListOpenTimelines(ctx context.Context) ([]repository.TransactionTimeline, error)
}

// Service derives milestone timelines. It holds no mutable state: every
// read reclassifies against the clock.
type Service struct {
	store Store
	clk   clock.Clock
}

// New creates a new timeline service
func New(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clk: clk}
}

// GetTimeline returns one transaction's derived timeline.
func (s *Service) GetTimeline(ctx context.Context, transactionID uuid.UUID) (*transport.TimelineResponse, error) {
	tl, err := s.store.GetTimeline(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	views := domain.Derive(tl.Milestones, now)

	return &transport.TimelineResponse{
		TransactionID:     tl.TransactionID,
		Milestones:        views,
		NextMilestone:     domain.Next(views),
		OverdueMilestones: domain.Overdue(views),
		Progress:          domain.Progress(views),
	}, nil
}

// UpcomingMilestones flags milestones across all open transactions whose
// target date falls within the window. Pending (unscheduled) milestones are
// not flagged; they have no date to act on.
func (s *Service) UpcomingMilestones(ctx context.Context, withinDays int) (*transport.FlaggedMilestonesResponse, error) {
	timelines, err := s.store.ListOpenTimelines(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	cutoff := now.Add(time.Duration(withinDays) * 24 * time.Hour)

	items := make([]transport.FlaggedMilestone, 0)
	for _, tl := range timelines {
		for _, view := range domain.Derive(tl.Milestones, now) {
			if view.Status != domain.StatusUpcoming {
				continue
			}
			if view.TargetDate != nil && view.TargetDate.After(cutoff) {
				continue
			}
			items = append(items, transport.FlaggedMilestone{
				TransactionID:   tl.TransactionID,
				PropertyAddress: tl.PropertyAddress,
				Milestone:       view,
			})
		}
	}

	return &transport.FlaggedMilestonesResponse{Items: items, Total: len(items)}, nil
}

// OverdueMilestones flags overdue milestones across all open transactions.
// Terminal transactions never appear; the store excludes them.
func (s *Service) OverdueMilestones(ctx context.Context) (*transport.FlaggedMilestonesResponse, error) {
	timelines, err := s.store.ListOpenTimelines(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	items := make([]transport.FlaggedMilestone, 0)
	for _, tl := range timelines {
		for _, view := range domain.Overdue(domain.Derive(tl.Milestones, now)) {
			items = append(items, transport.FlaggedMilestone{
				TransactionID:   tl.TransactionID,
				PropertyAddress: tl.PropertyAddress,
				Milestone:       view,
			})
		}
	}

	return &transport.FlaggedMilestonesResponse{Items: items, Total: len(items)}, nil
}
