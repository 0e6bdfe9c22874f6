package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hera/backend/internal/application/fiscal"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/interfaces/http/dto"
	"github.com/hera/backend/internal/interfaces/http/middleware"
)

// ErrCodeCloseValidation flags a fiscal close rejected by its validation
// report; the individual issues ride in the error details.
const ErrCodeCloseValidation = "CLOSE_VALIDATION_FAILED"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// getOrganizationID resolves the tenancy scope for the request: the JWT
// organization claim when authenticated, the X-Organization-ID header
// otherwise. Every data route requires one of the two.
func getOrganizationID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTOrganizationID(c)
	if raw == "" {
		raw = c.GetHeader("X-Organization-ID")
	}
	if raw == "" {
		return uuid.Nil, shared.ErrMissingOrganizationID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.ErrMissingOrganizationID
	}
	return id, nil
}

// parseIDParam parses a uuid path parameter
func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, message, getRequestID(c)))
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, message, getRequestID(c)))
}

// HandleError maps domain errors to HTTP responses; anything else is an
// internal error
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	// the close engine reports every blocking problem in one pass;
	// the full issue list rides in the error details
	var closeErr *fiscal.ValidationError
	if errors.As(err, &closeErr) {
		c.JSON(http.StatusUnprocessableEntity,
			dto.NewErrorResponseWithDetails(ErrCodeCloseValidation,
				"Fiscal close validation failed", getRequestID(c), closeErr.Report.Issues))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.DomainErrorStatus(domainErr),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, getRequestID(c)))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
