// Package notification provides event handlers for sending notifications in
// response to domain events. Domain modules publish events and this module
// inverts the dependency: they never need to know about email providers.
package notification

import (
	"context"

	diligencedomain "settlement_backend/internal/diligence/domain"
	"settlement_backend/internal/events"
	"settlement_backend/internal/notification/email"
	"settlement_backend/platform/config"
	"settlement_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Module dispatches outcome notifications for finalized due-diligence runs.
type Module struct {
	sender email.Sender
	cfg    config.EmailConfig
	log    *logger.Logger
}

// NewModule creates the notification module and subscribes it to the bus.
// A nil sender means email is disabled: notifications are logged, not
// delivered.
func NewModule(sender email.Sender, bus events.Bus, cfg config.EmailConfig, log *logger.Logger) *Module {
	m := &Module{sender: sender, cfg: cfg, log: log}
	bus.Subscribe("diligence.run.finalized", events.HandlerFunc(m.onRunFinalized))
	bus.Subscribe("timeline.milestone.reminder", events.HandlerFunc(m.onMilestoneReminder))
	return m
}

// onRunFinalized fans the outcome out to the logical recipients for that
// outcome. A delivery failure for one recipient does not block the others.
func (m *Module) onRunFinalized(ctx context.Context, e events.Event) error {
	finalized, ok := e.(events.DiligenceRunFinalized)
	if !ok {
		return nil
	}

	recipients := diligencedomain.RecipientsFor(finalized.Outcome)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, role := range recipients {
		role := role
		g.Go(func() error {
			m.notify(gctx, role, finalized)
			return nil
		})
	}
	_ = g.Wait()

	m.log.Info("outcome notifications dispatched",
		"run_id", finalized.RunID.String(),
		"transaction_id", finalized.TransactionID.String(),
		"outcome", finalized.Outcome,
		"recipients", len(recipients),
	)
	return nil
}

// onMilestoneReminder warns the buyer ahead of a critical milestone's target
// date.
func (m *Module) onMilestoneReminder(ctx context.Context, e events.Event) error {
	reminder, ok := e.(events.MilestoneReminderDue)
	if !ok {
		return nil
	}

	if m.sender == nil {
		m.log.Info("email disabled, skipping milestone reminder",
			"transaction_id", reminder.TransactionID.String(),
			"milestone", reminder.Milestone,
		)
		return nil
	}

	toEmail := m.cfg.GetNotifyEmail("buyer")
	if toEmail == "" {
		m.log.Warn("no email configured for recipient role", "recipient", "buyer")
		return nil
	}

	if err := m.sender.SendMilestoneReminder(ctx, toEmail, reminder.PropertyAddress, reminder.Milestone, reminder.TargetDate); err != nil {
		m.log.Error("failed to send milestone reminder",
			"transaction_id", reminder.TransactionID.String(),
			"milestone", reminder.Milestone,
			"error", err.Error(),
		)
	}
	return nil
}

func (m *Module) notify(ctx context.Context, role string, finalized events.DiligenceRunFinalized) {
	if m.sender == nil {
		m.log.Info("email disabled, skipping outcome notification",
			"recipient", role,
			"outcome", finalized.Outcome,
		)
		return
	}

	toEmail := m.cfg.GetNotifyEmail(role)
	if toEmail == "" {
		m.log.Warn("no email configured for recipient role", "recipient", role)
		return
	}

	if err := m.sender.SendOutcomeEmail(ctx, toEmail, finalized.PropertyAddress, finalized.Outcome, finalized.NextSteps); err != nil {
		m.log.Error("failed to send outcome notification",
			"recipient", role,
			"error", err.Error(),
		)
	}
}
