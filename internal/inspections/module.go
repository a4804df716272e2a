// Package inspections provides the inspection planning and results module.
package inspections

import (
	"settlement_backend/internal/events"
	apphttp "settlement_backend/internal/http"
	"settlement_backend/internal/inspections/handler"
	"settlement_backend/internal/inspections/repository"
	"settlement_backend/internal/inspections/service"
	"settlement_backend/platform/clock"
	"settlement_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the inspections domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new inspections module with all dependencies wired.
// The provider matcher defaults to the static assignment table until a real
// provider-matching integration is configured.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, clk clock.Clock, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, service.NewStaticMatcher(), eventBus, clk)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "inspections"
}

// RegisterRoutes registers the module's routes under /api/v1/transactions
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/transactions"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
