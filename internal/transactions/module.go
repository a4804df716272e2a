// Package transactions provides the property transaction domain module.
package transactions

import (
	"settlement_backend/internal/events"
	apphttp "settlement_backend/internal/http"
	"settlement_backend/internal/transactions/handler"
	"settlement_backend/internal/transactions/repository"
	"settlement_backend/internal/transactions/service"
	"settlement_backend/platform/clock"
	"settlement_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the transactions domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
	Repo    *repository.Repository
}

// NewModule creates a new transactions module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, clk clock.Clock, reminders service.ReminderScheduler, inspectionDueDays int, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, clk, reminders, inspectionDueDays)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
		Repo:    repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "transactions"
}

// RegisterRoutes registers the module's routes under /api/v1/transactions
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	transactions := ctx.Protected.Group("/transactions")
	m.handler.RegisterRoutes(transactions)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
