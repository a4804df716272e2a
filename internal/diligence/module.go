// Package diligence provides the due-diligence workflow engine module.
// It orchestrates inspection planning, risk scoring, and outcome capture
// across the other modules, checkpointing progress so runs survive restarts.
package diligence

import (
	"context"

	"settlement_backend/internal/diligence/handler"
	"settlement_backend/internal/diligence/repository"
	"settlement_backend/internal/diligence/service"
	"settlement_backend/internal/events"
	apphttp "settlement_backend/internal/http"
	inspectionservice "settlement_backend/internal/inspections/service"
	transactionservice "settlement_backend/internal/transactions/service"
	"settlement_backend/platform/clock"
	"settlement_backend/platform/config"
	"settlement_backend/platform/logger"
	"settlement_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the due-diligence workflow module
type Module struct {
	handler *handler.Handler
	Engine  *service.Engine
	log     *logger.Logger
}

// NewModule creates a new diligence module with all dependencies wired.
// The deadline scheduler may be nil, which disables overdue tracking.
func NewModule(
	pool *pgxpool.Pool,
	transactions *transactionservice.Service,
	inspections *inspectionservice.Service,
	deadlines service.DeadlineScheduler,
	eventBus events.Bus,
	clk clock.Clock,
	log *logger.Logger,
	cfg config.DiligenceConfig,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	engine := service.NewEngine(
		repo,
		service.NewTransactionsAdapter(transactions),
		service.NewInspectionsAdapter(inspections),
		deadlines,
		eventBus,
		clk,
		log,
		cfg.GetResultsDeadline(),
	)
	h := handler.New(engine, val)

	m := &Module{
		handler: h,
		Engine:  engine,
		log:     log,
	}
	m.subscribe(eventBus)
	return m
}

// subscribe wires the engine's resume triggers to the event bus.
func (m *Module) subscribe(bus events.Bus) {
	bus.Subscribe("inspections.result.recorded", events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		recorded, ok := e.(events.InspectionResultRecorded)
		if !ok {
			return nil
		}
		if err := m.Engine.ResumeOnResults(ctx, recorded.TransactionID); err != nil {
			m.log.Error("failed to resume run on inspection result",
				"transaction_id", recorded.TransactionID.String(),
				"error", err.Error(),
			)
			return err
		}
		return nil
	}))

	bus.Subscribe("diligence.results.overdue", events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		overdue, ok := e.(events.DiligenceResultsOverdue)
		if !ok {
			return nil
		}
		return m.Engine.HandleResultsOverdue(ctx, overdue.RunID)
	}))
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "diligence"
}

// RegisterRoutes registers run routes under /transactions/:id/diligence/runs
// and /diligence/runs.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterTransactionRoutes(ctx.Protected.Group("/transactions"))
	m.handler.RegisterRunRoutes(ctx.Protected.Group("/diligence/runs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
