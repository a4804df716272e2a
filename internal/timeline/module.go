// Package timeline provides the milestone timeline read-model module.
// Milestone state is derived on every read; this module stores nothing.
package timeline

import (
	apphttp "settlement_backend/internal/http"
	"settlement_backend/internal/timeline/handler"
	"settlement_backend/internal/timeline/repository"
	"settlement_backend/internal/timeline/service"
	"settlement_backend/platform/clock"
	"settlement_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the timeline domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new timeline module with all dependencies wired
func NewModule(pool *pgxpool.Pool, clk clock.Clock, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, clk)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "timeline"
}

// RegisterRoutes registers timeline routes: the per-transaction timeline
// under /transactions/:id/timeline and cross-transaction queries under
// /timeline.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterTransactionRoutes(ctx.Protected.Group("/transactions"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/timeline"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
