package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"settlement_backend/internal/events"
	"settlement_backend/platform/logger"
)

type recordedSend struct {
	to      string
	address string
	outcome string
	steps   []string
}

type fakeSender struct {
	mu        sync.Mutex
	sends     []recordedSend
	reminders []recordedSend
	failFor   map[string]error
}

func (f *fakeSender) SendOutcomeEmail(ctx context.Context, toEmail, propertyAddress, outcome string, nextSteps []string) error {
	if err := f.failFor[toEmail]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, recordedSend{to: toEmail, address: propertyAddress, outcome: outcome, steps: nextSteps})
	return nil
}

func (f *fakeSender) SendMilestoneReminder(ctx context.Context, toEmail, propertyAddress, milestone string, targetDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, recordedSend{to: toEmail, address: propertyAddress, outcome: milestone})
	return nil
}

type fakeEmailConfig struct {
	notify map[string]string
}

func (f fakeEmailConfig) GetEmailEnabled() bool             { return true }
func (f fakeEmailConfig) GetSMTPHost() string               { return "localhost" }
func (f fakeEmailConfig) GetSMTPPort() int                  { return 1025 }
func (f fakeEmailConfig) GetSMTPUsername() string           { return "" }
func (f fakeEmailConfig) GetSMTPPassword() string           { return "" }
func (f fakeEmailConfig) GetEmailFromAddress() string       { return "noreply@example.com" }
func (f fakeEmailConfig) GetNotifyEmail(role string) string { return f.notify[role] }

func finalizedEvent(outcome string) events.DiligenceRunFinalized {
	return events.DiligenceRunFinalized{
		BaseEvent:       events.NewBaseEvent(),
		RunID:           uuid.New(),
		TransactionID:   uuid.New(),
		PropertyAddress: "12 Harbour St, Sydney NSW 2000",
		Outcome:         outcome,
		NextSteps:       []string{"Proceed to settlement preparations"},
	}
}

func TestRunFinalizedSendsToEachConfiguredRecipient(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	cfg := fakeEmailConfig{notify: map[string]string{
		"buyer":       "buyer@example.com",
		"conveyancer": "legal@example.com",
		"agent":       "agent@example.com",
	}}
	NewModule(sender, bus, cfg, logger.New("development"))

	event := finalizedEvent("completed")
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(sender.sends) != 3 {
		t.Fatalf("got %d sends, want 3", len(sender.sends))
	}
	for _, send := range sender.sends {
		if send.address != event.PropertyAddress {
			t.Errorf("send to %s carried address %q", send.to, send.address)
		}
		if send.outcome != "completed" {
			t.Errorf("send to %s carried outcome %q", send.to, send.outcome)
		}
	}
}

func TestWithdrawnOutcomeSkipsAgent(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	cfg := fakeEmailConfig{notify: map[string]string{
		"buyer":       "buyer@example.com",
		"conveyancer": "legal@example.com",
		"agent":       "agent@example.com",
	}}
	NewModule(sender, bus, cfg, logger.New("development"))

	if err := bus.PublishSync(context.Background(), finalizedEvent("withdrawn")); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(sender.sends) != 2 {
		t.Fatalf("got %d sends, want 2", len(sender.sends))
	}
	for _, send := range sender.sends {
		if send.to == "agent@example.com" {
			t.Error("agent should not be notified of a withdrawal")
		}
	}
}

func TestNilSenderLogsAndSkips(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	cfg := fakeEmailConfig{notify: map[string]string{"buyer": "buyer@example.com"}}
	NewModule(nil, bus, cfg, logger.New("development"))

	if err := bus.PublishSync(context.Background(), finalizedEvent("completed")); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}
}

func TestUnconfiguredRoleIsSkipped(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	cfg := fakeEmailConfig{notify: map[string]string{"buyer": "buyer@example.com"}}
	NewModule(sender, bus, cfg, logger.New("development"))

	if err := bus.PublishSync(context.Background(), finalizedEvent("completed")); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(sender.sends) != 1 {
		t.Fatalf("got %d sends, want 1", len(sender.sends))
	}
	if sender.sends[0].to != "buyer@example.com" {
		t.Errorf("got recipient %s, want buyer@example.com", sender.sends[0].to)
	}
}

func TestMilestoneReminderGoesToBuyer(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	cfg := fakeEmailConfig{notify: map[string]string{"buyer": "buyer@example.com"}}
	NewModule(sender, bus, cfg, logger.New("development"))

	event := events.MilestoneReminderDue{
		BaseEvent:       events.NewBaseEvent(),
		TransactionID:   uuid.New(),
		PropertyAddress: "12 Harbour St, Sydney NSW 2000",
		Milestone:       "Finance Approval Due",
		TargetDate:      time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(sender.reminders) != 1 {
		t.Fatalf("got %d reminders, want 1", len(sender.reminders))
	}
	if sender.reminders[0].to != "buyer@example.com" {
		t.Errorf("got recipient %s, want buyer@example.com", sender.reminders[0].to)
	}
	if sender.reminders[0].outcome != "Finance Approval Due" {
		t.Errorf("got milestone %q", sender.reminders[0].outcome)
	}
}

func TestDeliveryFailureDoesNotBlockOthers(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{failFor: map[string]error{
		"buyer@example.com": errors.New("smtp refused"),
	}}
	cfg := fakeEmailConfig{notify: map[string]string{
		"buyer":       "buyer@example.com",
		"conveyancer": "legal@example.com",
		"agent":       "agent@example.com",
	}}
	NewModule(sender, bus, cfg, logger.New("development"))

	if err := bus.PublishSync(context.Background(), finalizedEvent("completed")); err != nil {
		t.Fatalf("delivery failure should not fail the handler: %v", err)
	}
	if len(sender.sends) != 2 {
		t.Fatalf("got %d successful sends, want 2", len(sender.sends))
	}
}
