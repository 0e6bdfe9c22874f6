package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hera/backend/internal/application/core"
)

// OrganizationHandler serves the tenancy-root endpoints
type OrganizationHandler struct {
	BaseHandler
	service *core.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(service *core.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// Create handles POST /organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req core.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid organization id")
		return
	}

	resp, err := h.service.Read(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
