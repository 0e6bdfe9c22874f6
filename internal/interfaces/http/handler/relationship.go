package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hera/backend/internal/application/core"
	"github.com/hera/backend/internal/domain/relationship"
)

// RelationshipHandler serves the entity-graph endpoints
type RelationshipHandler struct {
	BaseHandler
	service *core.RelationshipService
}

// NewRelationshipHandler creates a new RelationshipHandler
func NewRelationshipHandler(service *core.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{service: service}
}

// Create handles POST /relationships
func (h *RelationshipHandler) Create(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req core.CreateRelationshipRequest
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

// Deactivate handles DELETE /relationships/:id. Edges are never removed,
// only expired.
func (h *RelationshipHandler) Deactivate(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid relationship id")
		return
	}

	resp, err := h.service.Deactivate(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// traverseRequest holds the query parameters for a graph traversal
type traverseRequest struct {
	RelationshipType string `form:"relationship_type" binding:"required"`
	Direction        string `form:"direction"`
	Limit            int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// Traverse handles GET /entities/:id/traverse
func (h *RelationshipHandler) Traverse(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid entity id")
		return
	}

	var req traverseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Direction == "" {
		req.Direction = string(relationship.DirectionForward)
	}

	steps, err := h.service.Traverse(c.Request.Context(), orgID, entityID,
		req.RelationshipType, relationship.Direction(req.Direction), req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, steps)
}
