package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeSchedulerConfig struct {
	redisURL string
	queue    string
}

func (f fakeSchedulerConfig) GetRedisURL() string       { return f.redisURL }
func (f fakeSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (f fakeSchedulerConfig) GetAsynqQueueName() string { return f.queue }
func (f fakeSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(fakeSchedulerConfig{}); err == nil {
		t.Fatal("expected error for empty redis url")
	}
}

func TestNewClientRejectsMalformedURL(t *testing.T) {
	if _, err := NewClient(fakeSchedulerConfig{redisURL: "not-a-url"}); err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}

func TestScheduleResultsDeadlineEnqueues(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(fakeSchedulerConfig{
		redisURL: "redis://" + srv.Addr(),
		queue:    "deadlines",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	runAt := time.Now().Add(14 * 24 * time.Hour)
	if err := client.ScheduleResultsDeadline(context.Background(), uuid.New(), uuid.New(), runAt); err != nil {
		t.Fatalf("ScheduleResultsDeadline: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("deadlines")
	if err != nil {
		t.Fatalf("ListScheduledTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d scheduled tasks, want 1", len(tasks))
	}
	if tasks[0].Type != TaskResultsDeadline {
		t.Errorf("got task type %q, want %q", tasks[0].Type, TaskResultsDeadline)
	}
}

func TestScheduleMilestoneReminderEnqueues(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(fakeSchedulerConfig{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	target := time.Now().Add(48 * time.Hour)
	err = client.ScheduleMilestoneReminder(context.Background(), uuid.New(), "12 Harbour St", "Finance Approval Due", target, target.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ScheduleMilestoneReminder: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("ListScheduledTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d scheduled tasks, want 1", len(tasks))
	}
	if tasks[0].Type != TaskMilestoneReminder {
		t.Errorf("got task type %q, want %q", tasks[0].Type, TaskMilestoneReminder)
	}
}

func TestNilClientSchedulesNothing(t *testing.T) {
	var client *Client
	if err := client.ScheduleResultsDeadline(context.Background(), uuid.New(), uuid.New(), time.Now()); err != nil {
		t.Fatalf("nil client should be a no-op, got %v", err)
	}
}

func TestResultsDeadlinePayloadRoundTrip(t *testing.T) {
	payload := ResultsDeadlinePayload{
		RunID:         uuid.New().String(),
		TransactionID: uuid.New().String(),
	}
	task, err := NewResultsDeadlineTask(payload)
	if err != nil {
		t.Fatalf("NewResultsDeadlineTask: %v", err)
	}
	if task.Type() != TaskResultsDeadline {
		t.Errorf("got task type %q, want %q", task.Type(), TaskResultsDeadline)
	}

	parsed, err := ParseResultsDeadlinePayload(task)
	if err != nil {
		t.Fatalf("ParseResultsDeadlinePayload: %v", err)
	}
	if parsed != payload {
		t.Errorf("got %+v, want %+v", parsed, payload)
	}
}
