package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PostLineRequest is one caller-supplied transaction line. The caller owns
// the line numbering; the store validates the sequence.
type PostLineRequest struct {
	LineNumber   int              `json:"line_number" binding:"required"`
	LineEntityID uuid.UUID        `json:"line_entity_id" binding:"required"`
	Quantity     *decimal.Decimal `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	LineAmount   decimal.Decimal  `json:"line_amount"`
	Side         string           `json:"side"` // debit/credit for ledger lines
	SmartCode    string           `json:"smart_code" binding:"required"`
	Metadata     shared.JSONMap   `json:"metadata"`
}

// PostTransactionRequest posts a header and its lines atomically
type PostTransactionRequest struct {
	TransactionType string            `json:"transaction_type" binding:"required"`
	TransactionCode string            `json:"transaction_code" binding:"required"`
	TransactionDate time.Time         `json:"transaction_date" binding:"required"`
	SmartCode       string            `json:"smart_code" binding:"required"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	FromEntityID    *uuid.UUID        `json:"from_entity_id"`
	ToEntityID      *uuid.UUID        `json:"to_entity_id"`
	Metadata        shared.JSONMap    `json:"metadata"`
	Lines           []PostLineRequest `json:"lines" binding:"required,min=1"`
}

// LineResponse is the API view of one line
type LineResponse struct {
	ID           uuid.UUID       `json:"id"`
	LineNumber   int             `json:"line_number"`
	LineEntityID uuid.UUID       `json:"line_entity_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineAmount   decimal.Decimal `json:"line_amount"`
	Side         string          `json:"side,omitempty"`
	SmartCode    string          `json:"smart_code"`
	Metadata     shared.JSONMap  `json:"metadata"`
}

// TransactionResponse is the API view of a transaction
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrganizationID  uuid.UUID       `json:"organization_id"`
	TransactionType string          `json:"transaction_type"`
	TransactionCode string          `json:"transaction_code"`
	TransactionDate time.Time       `json:"transaction_date"`
	SmartCode       string          `json:"smart_code"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	FromEntityID    *uuid.UUID      `json:"from_entity_id,omitempty"`
	ToEntityID      *uuid.UUID      `json:"to_entity_id,omitempty"`
	Status          string          `json:"status"`
	Metadata        shared.JSONMap  `json:"metadata"`
	ReversalOfID    *uuid.UUID      `json:"reversal_of_id,omitempty"`
	Lines           []LineResponse  `json:"lines"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewTransactionResponse maps a domain transaction to its API view
func NewTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	lines := make([]LineResponse, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = LineResponse{
			ID:           l.ID,
			LineNumber:   l.LineNumber,
			LineEntityID: l.LineEntityID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineAmount:   l.LineAmount,
			Side:         string(l.Side()),
			SmartCode:    l.SmartCode,
			Metadata:     l.Metadata,
		}
	}
	return &TransactionResponse{
		ID:              t.ID,
		OrganizationID:  t.OrganizationID,
		TransactionType: t.TransactionType,
		TransactionCode: t.TransactionCode,
		TransactionDate: t.TransactionDate,
		SmartCode:       t.SmartCode,
		TotalAmount:     t.TotalAmount,
		FromEntityID:    t.FromEntityID,
		ToEntityID:      t.ToEntityID,
		Status:          string(t.Status),
		Metadata:        t.Metadata,
		ReversalOfID:    t.ReversalOfID,
		Lines:           lines,
		CreatedAt:       t.CreatedAt,
	}
}

// BalanceResponse is the signed balance of one entity as of a date
type BalanceResponse struct {
	EntityID uuid.UUID       `json:"entity_id"`
	AsOf     time.Time       `json:"as_of"`
	Balance  decimal.Decimal `json:"balance"`
}
