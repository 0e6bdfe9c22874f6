package models

import (
	"time"

	"github.com/hera/backend/internal/domain/smartcode"
)

// SmartCodePolicyModel maps to the smart_code_policies table. One row per
// industry; registering a new industry is an insert, not a deploy.
type SmartCodePolicyModel struct {
	Industry   string    `gorm:"size:32;primary_key"`
	MinVersion int       `gorm:"not null;default:1"`
	// no column default: gorm would skip inserting an explicit false
	IsActive   bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (SmartCodePolicyModel) TableName() string {
	return "smart_code_policies"
}

// ToDomain converts the model to a domain policy
func (m *SmartCodePolicyModel) ToDomain() smartcode.IndustryPolicy {
	return smartcode.IndustryPolicy{
		Industry:   m.Industry,
		MinVersion: m.MinVersion,
		IsActive:   m.IsActive,
		UpdatedAt:  m.UpdatedAt,
	}
}

// SmartCodePolicyModelFromDomain converts a domain policy to the model
func SmartCodePolicyModelFromDomain(p smartcode.IndustryPolicy) *SmartCodePolicyModel {
	return &SmartCodePolicyModel{
		Industry:   p.Industry,
		MinVersion: p.MinVersion,
		IsActive:   p.IsActive,
		UpdatedAt:  p.UpdatedAt,
	}
}
