package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hera/backend/internal/application/fiscal"
)

// FiscalHandler serves the fiscal-year-close endpoints
type FiscalHandler struct {
	BaseHandler
	service *fiscal.CloseService
}

// NewFiscalHandler creates a new FiscalHandler
func NewFiscalHandler(service *fiscal.CloseService) *FiscalHandler {
	return &FiscalHandler{service: service}
}

// Preview handles POST /fiscal/close/preview. It runs the full close
// validation and returns the would-be closing entry without writing
// anything.
func (h *FiscalHandler) Preview(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req fiscal.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Close handles POST /fiscal/close
func (h *FiscalHandler) Close(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req fiscal.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Close(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GeneratePeriods handles POST /fiscal/periods. Provisioning is
// idempotent: existing period entities are left untouched.
func (h *FiscalHandler) GeneratePeriods(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req fiscal.GeneratePeriodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	periods, err := h.service.GeneratePeriods(c.Request.Context(), orgID, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, periods)
}
