package scheduler

import (
	"context"
	"fmt"

	"settlement_backend/internal/events"
	"settlement_backend/platform/config"
	"settlement_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskResultsDeadline, w.handleResultsDeadline)
	mux.HandleFunc(TaskMilestoneReminder, w.handleMilestoneReminder)

	return w, nil
}

// handleResultsDeadline turns a fired deadline task into a domain event.
// Whether the run is actually still waiting is the subscriber's call.
func (w *Worker) handleResultsDeadline(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseResultsDeadlinePayload(task)
	if err != nil {
		return err
	}

	runID, err := uuid.Parse(payload.RunID)
	if err != nil {
		return err
	}

	transactionID, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.DiligenceResultsOverdue{
		BaseEvent:     events.NewBaseEvent(),
		RunID:         runID,
		TransactionID: transactionID,
	})
}

// handleMilestoneReminder turns a fired reminder task into a domain event.
func (w *Worker) handleMilestoneReminder(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseMilestoneReminderPayload(task)
	if err != nil {
		return err
	}

	transactionID, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.MilestoneReminderDue{
		BaseEvent:       events.NewBaseEvent(),
		TransactionID:   transactionID,
		PropertyAddress: payload.PropertyAddress,
		Milestone:       payload.Milestone,
		TargetDate:      payload.TargetDate,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
