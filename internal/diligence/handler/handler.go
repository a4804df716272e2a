package handler

import (
	"net/http"

	"settlement_backend/internal/diligence/repository"
	"settlement_backend/internal/diligence/service"
	"settlement_backend/internal/diligence/transport"
	"settlement_backend/platform/httpkit"
	"settlement_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for due-diligence workflow runs
type Handler struct {
	engine *service.Engine
	val    *validator.Validator
}

// New creates a new diligence handler
func New(engine *service.Engine, val *validator.Validator) *Handler {
	return &Handler{engine: engine, val: val}
}

// RegisterTransactionRoutes registers the routes nested under a transaction
func (h *Handler) RegisterTransactionRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/diligence/runs", h.StartRun)
	rg.GET("/:id/diligence/runs", h.ListRuns)
}

// RegisterRunRoutes registers the run-scoped routes
func (h *Handler) RegisterRunRoutes(rg *gin.RouterGroup) {
	rg.GET("/:runId", h.GetRun)
	rg.POST("/:runId/decision", h.SupplyDecision)
	rg.POST("/:runId/cancel", h.Cancel)
}

func parseTransactionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid transaction id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid run id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// StartRun handles POST /api/v1/transactions/:id/diligence/runs
func (h *Handler) StartRun(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	run, err := h.engine.StartRun(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.FromRun(run)
	httpkit.Created(c, resp)
}

// ListRuns handles GET /api/v1/transactions/:id/diligence/runs
func (h *Handler) ListRuns(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	runs, err := h.engine.ListRuns(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.RunResponse, 0, len(runs))
	for i := range runs {
		items = append(items, transport.FromRun(&runs[i]))
	}

	httpkit.OK(c, transport.RunListResponse{Items: items, Total: len(items)})
}

// GetRun handles GET /api/v1/diligence/runs/:runId
func (h *Handler) GetRun(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	run, err := h.engine.GetRun(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.FromRun(run)
	httpkit.OK(c, resp)
}

// SupplyDecision handles POST /api/v1/diligence/runs/:runId/decision
func (h *Handler) SupplyDecision(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	var req transport.SupplyDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	run, err := h.engine.SupplyDecision(c.Request.Context(), id, repository.DecisionRecord{
		Decision:          req.Decision,
		Notes:             req.Notes,
		NegotiationPoints: req.NegotiationPoints,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.FromRun(run)
	httpkit.OK(c, resp)
}

// Cancel handles POST /api/v1/diligence/runs/:runId/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	run, err := h.engine.Cancel(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.FromRun(run)
	httpkit.OK(c, resp)
}
