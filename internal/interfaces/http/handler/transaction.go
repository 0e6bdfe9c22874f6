package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hera/backend/internal/application/ledger"
)

// TransactionHandler serves the universal-transaction endpoints
type TransactionHandler struct {
	BaseHandler
	service *ledger.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(service *ledger.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// Post handles POST /transactions
func (h *TransactionHandler) Post(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req ledger.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Post(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid transaction id")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// reverseRequest names the compensating transaction
type reverseRequest struct {
	ReversalCode string     `json:"reversal_code" binding:"required"`
	ReversalDate *time.Time `json:"reversal_date"`
}

// Reverse handles POST /transactions/:id/reverse
func (h *TransactionHandler) Reverse(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid transaction id")
		return
	}

	var req reverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	reversalDate := time.Now().UTC()
	if req.ReversalDate != nil {
		reversalDate = *req.ReversalDate
	}

	resp, err := h.service.Reverse(c.Request.Context(), orgID, id, req.ReversalCode, reversalDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Balance handles GET /entities/:id/balance?as_of=
func (h *TransactionHandler) Balance(c *gin.Context) {
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

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be RFC3339")
			return
		}
		asOf = parsed
	}

	resp, err := h.service.GetBalance(c.Request.Context(), orgID, entityID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
