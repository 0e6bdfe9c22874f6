package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/organization"
	"github.com/hera/backend/internal/domain/relationship"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrganizationModel maps to the core_organizations table
type OrganizationModel struct {
	AggregateModel
	Name     string         `gorm:"size:255;not null"`
	Status   string         `gorm:"size:32;not null;default:'active'"`
	Settings shared.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName specifies the table name
func (OrganizationModel) TableName() string {
	return "core_organizations"
}

// ToDomain converts the model to a domain organization
func (m *OrganizationModel) ToDomain() *organization.Organization {
	org := &organization.Organization{
		Name:   m.Name,
		Status: organization.Status(m.Status),
		Settings: organization.Settings{
			Currency:             valueobject.DefaultCurrency,
			FiscalYearStartMonth: 1,
		},
	}
	m.PopulateAggregateRoot(&org.BaseAggregateRoot)

	if c, ok := m.Settings["currency"].(string); ok && c != "" {
		org.Settings.Currency = valueobject.Currency(c)
	}
	switch v := m.Settings["fiscal_year_start_month"].(type) {
	case float64:
		if v >= 1 && v <= 12 {
			org.Settings.FiscalYearStartMonth = int(v)
		}
	case int:
		if v >= 1 && v <= 12 {
			org.Settings.FiscalYearStartMonth = v
		}
	}
	return org
}

// OrganizationModelFromDomain converts a domain organization to the model
func OrganizationModelFromDomain(org *organization.Organization) *OrganizationModel {
	m := &OrganizationModel{
		Name:   org.Name,
		Status: string(org.Status),
		Settings: shared.JSONMap{
			"currency":                string(org.Settings.Currency),
			"fiscal_year_start_month": org.Settings.FiscalYearStartMonth,
		},
	}
	m.FromDomainAggregateRoot(org.BaseAggregateRoot)
	return m
}

// EntityModel maps to the core_entities table
type EntityModel struct {
	OrgAggregateModel
	EntityType string         `gorm:"size:64;not null;index"`
	EntityName string         `gorm:"size:255;not null"`
	EntityCode string         `gorm:"size:128;index"`
	SmartCode  string         `gorm:"size:128;not null"`
	Status     string         `gorm:"size:32;not null;default:'active'"`
	Metadata   shared.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
}

// TableName specifies the table name
func (EntityModel) TableName() string {
	return "core_entities"
}

// ToDomain converts the model to a domain entity
func (m *EntityModel) ToDomain() *entity.Entity {
	e := &entity.Entity{
		EntityType: m.EntityType,
		EntityName: m.EntityName,
		EntityCode: m.EntityCode,
		SmartCode:  m.SmartCode,
		Status:     entity.Status(m.Status),
		Metadata:   m.Metadata,
	}
	m.PopulateOrgAggregateRoot(&e.OrgAggregateRoot)
	if e.Metadata == nil {
		e.Metadata = shared.JSONMap{}
	}
	return e
}

// EntityModelFromDomain converts a domain entity to the model
func EntityModelFromDomain(e *entity.Entity) *EntityModel {
	m := &EntityModel{
		EntityType: e.EntityType,
		EntityName: e.EntityName,
		EntityCode: e.EntityCode,
		SmartCode:  e.SmartCode,
		Status:     string(e.Status),
		Metadata:   e.Metadata,
	}
	m.FromDomainOrgAggregateRoot(e.OrgAggregateRoot)
	return m
}

// DynamicFieldModel maps to the core_dynamic_data table. Exactly one value
// column matching field_type is populated per row.
type DynamicFieldModel struct {
	BaseModel
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;index"`
	EntityID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_dynamic_entity_field,priority:1"`
	FieldName      string           `gorm:"size:128;not null;uniqueIndex:idx_dynamic_entity_field,priority:2"`
	FieldType      string           `gorm:"size:16;not null"`
	SmartCode      string           `gorm:"size:128"`
	ValueText      *string          `gorm:"type:text"`
	ValueNumber    *decimal.Decimal `gorm:"type:decimal(20,8)"`
	ValueBoolean   *bool
	ValueDate      *time.Time
	ValueJSON      shared.JSONMap `gorm:"type:jsonb"`
}

// TableName specifies the table name
func (DynamicFieldModel) TableName() string {
	return "core_dynamic_data"
}

// ToDomain converts the model to a domain dynamic field
func (m *DynamicFieldModel) ToDomain() *entity.DynamicField {
	return &entity.DynamicField{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrganizationID: m.OrganizationID,
		EntityID:       m.EntityID,
		FieldName:      m.FieldName,
		FieldType:      entity.FieldType(m.FieldType),
		SmartCode:      m.SmartCode,
		ValueText:      m.ValueText,
		ValueNumber:    m.ValueNumber,
		ValueBoolean:   m.ValueBoolean,
		ValueDate:      m.ValueDate,
		ValueJSON:      m.ValueJSON,
	}
}

// DynamicFieldModelFromDomain converts a domain dynamic field to the model
func DynamicFieldModelFromDomain(f *entity.DynamicField) *DynamicFieldModel {
	m := &DynamicFieldModel{
		OrganizationID: f.OrganizationID,
		EntityID:       f.EntityID,
		FieldName:      f.FieldName,
		FieldType:      string(f.FieldType),
		SmartCode:      f.SmartCode,
		ValueText:      f.ValueText,
		ValueNumber:    f.ValueNumber,
		ValueBoolean:   f.ValueBoolean,
		ValueDate:      f.ValueDate,
		ValueJSON:      f.ValueJSON,
	}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}

// RelationshipModel maps to the core_relationships table
type RelationshipModel struct {
	OrgAggregateModel
	FromEntityID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	ToEntityID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	RelationshipType string         `gorm:"size:64;not null"`
	SmartCode        string         `gorm:"size:128;not null"`
	Strength         *float64       `gorm:"type:decimal(5,4)"`
	RelationshipData shared.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	// no column default: gorm would skip inserting an explicit false
	IsActive         bool           `gorm:"not null"`
	EffectiveDate    *time.Time
	ExpirationDate   *time.Time
}

// TableName specifies the table name
func (RelationshipModel) TableName() string {
	return "core_relationships"
}

// ToDomain converts the model to a domain relationship
func (m *RelationshipModel) ToDomain() *relationship.Relationship {
	r := &relationship.Relationship{
		FromEntityID:     m.FromEntityID,
		ToEntityID:       m.ToEntityID,
		RelationshipType: m.RelationshipType,
		SmartCode:        m.SmartCode,
		Strength:         m.Strength,
		RelationshipData: m.RelationshipData,
		IsActive:         m.IsActive,
		EffectiveDate:    m.EffectiveDate,
		ExpirationDate:   m.ExpirationDate,
	}
	m.PopulateOrgAggregateRoot(&r.OrgAggregateRoot)
	if r.RelationshipData == nil {
		r.RelationshipData = shared.JSONMap{}
	}
	return r
}

// RelationshipModelFromDomain converts a domain relationship to the model
func RelationshipModelFromDomain(r *relationship.Relationship) *RelationshipModel {
	m := &RelationshipModel{
		FromEntityID:     r.FromEntityID,
		ToEntityID:       r.ToEntityID,
		RelationshipType: r.RelationshipType,
		SmartCode:        r.SmartCode,
		Strength:         r.Strength,
		RelationshipData: r.RelationshipData,
		IsActive:         r.IsActive,
		EffectiveDate:    r.EffectiveDate,
		ExpirationDate:   r.ExpirationDate,
	}
	m.FromDomainOrgAggregateRoot(r.OrgAggregateRoot)
	return m
}
