package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionModel maps to the universal_transactions table
type TransactionModel struct {
	OrgAggregateModel
	TransactionType string          `gorm:"size:64;not null;index"`
	TransactionCode string          `gorm:"size:128;not null;index"`
	TransactionDate time.Time       `gorm:"not null;index"`
	SmartCode       string          `gorm:"size:128;not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	FromEntityID    *uuid.UUID      `gorm:"type:uuid;index"`
	ToEntityID      *uuid.UUID      `gorm:"type:uuid;index"`
	Status          string          `gorm:"size:32;not null;default:'draft';index"`
	Metadata        shared.JSONMap  `gorm:"type:jsonb;not null;default:'{}'"`
	ReversalOfID    *uuid.UUID      `gorm:"type:uuid;index"`

	Lines []TransactionLineModel `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName specifies the table name
func (TransactionModel) TableName() string {
	return "universal_transactions"
}

// ToDomain converts the model to a domain transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	t := &ledger.Transaction{
		TransactionType: m.TransactionType,
		TransactionCode: m.TransactionCode,
		TransactionDate: m.TransactionDate,
		SmartCode:       m.SmartCode,
		TotalAmount:     m.TotalAmount,
		FromEntityID:    m.FromEntityID,
		ToEntityID:      m.ToEntityID,
		Status:          ledger.Status(m.Status),
		Metadata:        m.Metadata,
		ReversalOfID:    m.ReversalOfID,
		Lines:           make([]ledger.Line, 0, len(m.Lines)),
	}
	m.PopulateOrgAggregateRoot(&t.OrgAggregateRoot)
	if t.Metadata == nil {
		t.Metadata = shared.JSONMap{}
	}
	for i := range m.Lines {
		t.Lines = append(t.Lines, m.Lines[i].ToDomain())
	}
	return t
}

// TransactionModelFromDomain converts a domain transaction to the model,
// lines included
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{
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
		Lines:           make([]TransactionLineModel, 0, len(t.Lines)),
	}
	m.FromDomainOrgAggregateRoot(t.OrgAggregateRoot)
	for _, line := range t.Lines {
		m.Lines = append(m.Lines, TransactionLineModelFromDomain(t.OrganizationID, line))
	}
	return m
}

// TransactionLineModel maps to the universal_transaction_lines table.
// OrganizationID is denormalized from the header so balance queries never
// join for the tenancy filter.
type TransactionLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber     int             `gorm:"not null"`
	LineEntityID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	LineAmount     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	SmartCode      string          `gorm:"size:128;not null"`
	Metadata       shared.JSONMap  `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName specifies the table name
func (TransactionLineModel) TableName() string {
	return "universal_transaction_lines"
}

// ToDomain converts the model to a domain line
func (m *TransactionLineModel) ToDomain() ledger.Line {
	l := ledger.Line{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		LineNumber:    m.LineNumber,
		LineEntityID:  m.LineEntityID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		LineAmount:    m.LineAmount,
		SmartCode:     m.SmartCode,
		Metadata:      m.Metadata,
	}
	if l.Metadata == nil {
		l.Metadata = shared.JSONMap{}
	}
	return l
}

// TransactionLineModelFromDomain converts a domain line to the model
func TransactionLineModelFromDomain(organizationID uuid.UUID, l ledger.Line) TransactionLineModel {
	return TransactionLineModel{
		ID:             l.ID,
		OrganizationID: organizationID,
		TransactionID:  l.TransactionID,
		LineNumber:     l.LineNumber,
		LineEntityID:   l.LineEntityID,
		Quantity:       l.Quantity,
		UnitPrice:      l.UnitPrice,
		LineAmount:     l.LineAmount,
		SmartCode:      l.SmartCode,
		Metadata:       l.Metadata,
	}
}
