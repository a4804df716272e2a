package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"settlement_backend/internal/diligence"
	"settlement_backend/internal/events"
	"settlement_backend/internal/inspections"
	"settlement_backend/internal/notification"
	"settlement_backend/internal/notification/email"
	"settlement_backend/internal/scheduler"
	"settlement_backend/internal/transactions"
	"settlement_backend/platform/clock"
	"settlement_backend/platform/config"
	"settlement_backend/platform/db"
	"settlement_backend/platform/logger"
	"settlement_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	clk := clock.System{}

	// Notification and diligence modules subscribe to the bus so deadline
	// tasks turned into events reach their handlers in this process too.
	notification.NewModule(email.NewSender(cfg), eventBus, cfg, log)

	transactionsModule := transactions.NewModule(pool, eventBus, clk, nil, cfg.GetInspectionDueDays(), val)
	inspectionsModule := inspections.NewModule(pool, eventBus, clk, val)
	diligence.NewModule(
		pool,
		transactionsModule.Service,
		inspectionsModule.Service,
		nil,
		eventBus,
		clk,
		log,
		cfg,
		val,
	)

	monitorInterval := getDurationEnv("MILESTONE_MONITOR_INTERVAL", time.Hour)
	monitor := scheduler.NewMilestoneMonitor(pool, clk, log, monitorInterval)
	go monitor.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
