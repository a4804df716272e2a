package scheduler

import (
	"context"
	"time"

	timelinedomain "settlement_backend/internal/timeline/domain"
	timelinerepo "settlement_backend/internal/timeline/repository"
	"settlement_backend/platform/clock"
	"settlement_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MilestoneMonitor periodically scans open transactions and logs every
// critical milestone that has gone overdue. It is a watchdog, not a mutator:
// milestone state is derived on read, so there is nothing to update.
type MilestoneMonitor struct {
	repo     *timelinerepo.Repository
	clk      clock.Clock
	log      *logger.Logger
	interval time.Duration
}

func NewMilestoneMonitor(pool *pgxpool.Pool, clk clock.Clock, log *logger.Logger, interval time.Duration) *MilestoneMonitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &MilestoneMonitor{
		repo:     timelinerepo.New(pool),
		clk:      clk,
		log:      log,
		interval: interval,
	}
}

func (m *MilestoneMonitor) Run(ctx context.Context) {
	if m == nil || m.repo == nil {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.scan(ctx)
	}
}

func (m *MilestoneMonitor) scan(ctx context.Context) {
	timelines, err := m.repo.ListOpenTimelines(ctx)
	if err != nil {
		m.log.Warn("milestone scan failed", "error", err)
		return
	}

	now := m.clk.Now()
	for _, tl := range timelines {
		for _, ms := range tl.Milestones {
			status := timelinedomain.Classify(ms.Name, ms.TargetDate, ms.CompletedAt, now)
			if status != timelinedomain.StatusOverdue || !timelinedomain.IsCritical(ms.Name) {
				continue
			}
			m.log.Warn("critical milestone overdue",
				"transaction_id", tl.TransactionID.String(),
				"property_address", tl.PropertyAddress,
				"milestone", ms.Name,
			)
		}
	}
}
