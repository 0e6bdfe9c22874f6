package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hera/backend/internal/application/core"
	"github.com/hera/backend/internal/interfaces/http/dto"
)

// EntityHandler serves the universal-entity endpoints, including the
// per-entity dynamic data
type EntityHandler struct {
	BaseHandler
	service *core.EntityService
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(service *core.EntityService) *EntityHandler {
	return &EntityHandler{service: service}
}

// Create handles POST /entities
func (h *EntityHandler) Create(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req core.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /entities/:id
func (h *EntityHandler) Get(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid entity id")
		return
	}

	resp, err := h.service.Read(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByCode handles GET /entities/by-code?entity_type=&entity_code=
func (h *EntityHandler) GetByCode(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	entityType := c.Query("entity_type")
	entityCode := c.Query("entity_code")
	if entityType == "" || entityCode == "" {
		h.BadRequest(c, "entity_type and entity_code are required")
		return
	}

	resp, err := h.service.ReadByCode(c.Request.Context(), orgID, entityType, entityCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// listEntitiesRequest adds the entity filters to the common list params
type listEntitiesRequest struct {
	dto.ListRequest
	EntityType string `form:"entity_type"`
	Status     string `form:"status"`
	SmartCode  string `form:"smart_code"`
}

// List handles GET /entities
func (h *EntityHandler) List(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req listEntitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := req.ToFilter()
	if req.Status != "" || req.SmartCode != "" {
		filter.Filters = map[string]interface{}{}
		if req.Status != "" {
			filter.Filters["status"] = req.Status
		}
		if req.SmartCode != "" {
			filter.Filters["smart_code"] = req.SmartCode
		}
	}

	page, err := h.service.List(c.Request.Context(), orgID, req.EntityType, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PATCH /entities/:id
func (h *EntityHandler) Update(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid entity id")
		return
	}

	var req core.UpdateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /entities/:id (soft delete)
func (h *EntityHandler) Delete(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid entity id")
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetDynamicField handles PUT /entities/:id/dynamic-data
func (h *EntityHandler) SetDynamicField(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid entity id")
		return
	}

	var req core.SetDynamicFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.SetDynamicField(c.Request.Context(), orgID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetDynamicFields handles GET /entities/:id/dynamic-data
func (h *EntityHandler) GetDynamicFields(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid entity id")
		return
	}

	fields, err := h.service.GetDynamicFields(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fields)
}
