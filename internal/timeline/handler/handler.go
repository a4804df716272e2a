package handler

import (
	"net/http"

	"settlement_backend/internal/timeline/service"
	"settlement_backend/internal/timeline/transport"
	"settlement_backend/platform/httpkit"
	"settlement_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for timeline queries
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new timeline handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterTransactionRoutes registers the per-transaction timeline route
func (h *Handler) RegisterTransactionRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/timeline", h.GetTimeline)
}

// RegisterRoutes registers the cross-transaction timeline routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/upcoming", h.Upcoming)
	rg.GET("/overdue", h.Overdue)
}

// GetTimeline handles GET /api/v1/transactions/:id/timeline
func (h *Handler) GetTimeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid transaction id", nil)
		return
	}

	result, err := h.svc.GetTimeline(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Upcoming handles GET /api/v1/timeline/upcoming
func (h *Handler) Upcoming(c *gin.Context) {
	req := transport.UpcomingMilestonesRequest{WithinDays: 7}
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.UpcomingMilestones(c.Request.Context(), req.WithinDays)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Overdue handles GET /api/v1/timeline/overdue
func (h *Handler) Overdue(c *gin.Context) {
	result, err := h.svc.OverdueMilestones(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
