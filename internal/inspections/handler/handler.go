package handler

import (
	"net/http"

	"settlement_backend/internal/inspections/service"
	"settlement_backend/internal/inspections/transport"
	"settlement_backend/platform/httpkit"
	"settlement_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for inspections
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new inspections handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the inspection routes under /transactions/:id
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/inspections/bookings", h.ListBookings)
	rg.GET("/:id/inspections/results", h.ListResults)
	rg.POST("/:id/inspections/results", h.RecordResult)
}

func parseTransactionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid transaction id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// ListBookings handles GET /api/v1/transactions/:id/inspections/bookings
func (h *Handler) ListBookings(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListBookings(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ListResults handles GET /api/v1/transactions/:id/inspections/results
func (h *Handler) ListResults(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListResults(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// RecordResult handles POST /api/v1/transactions/:id/inspections/results
func (h *Handler) RecordResult(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	var req transport.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.RecordResult(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}
