package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/relationship"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateEntityRequest carries the fields for a new entity
type CreateEntityRequest struct {
	EntityType string         `json:"entity_type" binding:"required"`
	EntityName string         `json:"entity_name" binding:"required"`
	EntityCode string         `json:"entity_code"`
	SmartCode  string         `json:"smart_code" binding:"required"`
	Metadata   shared.JSONMap `json:"metadata"`
}

// UpdateEntityRequest carries a merge-patch. Organization and entity IDs
// are never patchable.
type UpdateEntityRequest struct {
	EntityName *string        `json:"entity_name"`
	SmartCode  *string        `json:"smart_code"`
	Status     *string        `json:"status"`
	Metadata   shared.JSONMap `json:"metadata"`
}

// SetDynamicFieldRequest sets one typed attribute on an entity
type SetDynamicFieldRequest struct {
	FieldName string           `json:"field_name" binding:"required"`
	FieldType string           `json:"field_type" binding:"required"`
	SmartCode string           `json:"smart_code" binding:"required"`
	Text      *string          `json:"value_text"`
	Number    *decimal.Decimal `json:"value_number"`
	Boolean   *bool            `json:"value_boolean"`
	Date      *time.Time       `json:"value_date"`
	JSON      shared.JSONMap   `json:"value_json"`
}

// EntityResponse is the API view of an entity
type EntityResponse struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	EntityType     string         `json:"entity_type"`
	EntityName     string         `json:"entity_name"`
	EntityCode     string         `json:"entity_code,omitempty"`
	SmartCode      string         `json:"smart_code"`
	Status         string         `json:"status"`
	Metadata       shared.JSONMap `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewEntityResponse maps a domain entity to its API view
func NewEntityResponse(e *entity.Entity) *EntityResponse {
	return &EntityResponse{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		EntityType:     e.EntityType,
		EntityName:     e.EntityName,
		EntityCode:     e.EntityCode,
		SmartCode:      e.SmartCode,
		Status:         e.Status.String(),
		Metadata:       e.Metadata,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// DynamicFieldResponse is the API view of one typed attribute
type DynamicFieldResponse struct {
	FieldName string           `json:"field_name"`
	FieldType string           `json:"field_type"`
	SmartCode string           `json:"smart_code"`
	Text      *string          `json:"value_text,omitempty"`
	Number    *decimal.Decimal `json:"value_number,omitempty"`
	Boolean   *bool            `json:"value_boolean,omitempty"`
	Date      *time.Time       `json:"value_date,omitempty"`
	JSON      shared.JSONMap   `json:"value_json,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewDynamicFieldResponse maps a dynamic field to its API view
func NewDynamicFieldResponse(f *entity.DynamicField) DynamicFieldResponse {
	return DynamicFieldResponse{
		FieldName: f.FieldName,
		FieldType: string(f.FieldType),
		SmartCode: f.SmartCode,
		Text:      f.ValueText,
		Number:    f.ValueNumber,
		Boolean:   f.ValueBoolean,
		Date:      f.ValueDate,
		JSON:      f.ValueJSON,
		UpdatedAt: f.UpdatedAt,
	}
}

// CreateRelationshipRequest associates two entities
type CreateRelationshipRequest struct {
	FromEntityID     uuid.UUID      `json:"from_entity_id" binding:"required"`
	ToEntityID       uuid.UUID      `json:"to_entity_id" binding:"required"`
	RelationshipType string         `json:"relationship_type" binding:"required"`
	SmartCode        string         `json:"smart_code" binding:"required"`
	Strength         *float64       `json:"strength"`
	RelationshipData shared.JSONMap `json:"relationship_data"`
	EffectiveDate    *time.Time     `json:"effective_date"`
}

// RelationshipResponse is the API view of a relationship
type RelationshipResponse struct {
	ID               uuid.UUID      `json:"id"`
	OrganizationID   uuid.UUID      `json:"organization_id"`
	FromEntityID     uuid.UUID      `json:"from_entity_id"`
	ToEntityID       uuid.UUID      `json:"to_entity_id"`
	RelationshipType string         `json:"relationship_type"`
	SmartCode        string         `json:"smart_code"`
	Strength         *float64       `json:"strength,omitempty"`
	RelationshipData shared.JSONMap `json:"relationship_data"`
	IsActive         bool           `json:"is_active"`
	EffectiveDate    *time.Time     `json:"effective_date,omitempty"`
	ExpirationDate   *time.Time     `json:"expiration_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// NewRelationshipResponse maps a domain relationship to its API view
func NewRelationshipResponse(r *relationship.Relationship) *RelationshipResponse {
	return &RelationshipResponse{
		ID:               r.ID,
		OrganizationID:   r.OrganizationID,
		FromEntityID:     r.FromEntityID,
		ToEntityID:       r.ToEntityID,
		RelationshipType: r.RelationshipType,
		SmartCode:        r.SmartCode,
		Strength:         r.Strength,
		RelationshipData: r.RelationshipData,
		IsActive:         r.IsActive,
		EffectiveDate:    r.EffectiveDate,
		ExpirationDate:   r.ExpirationDate,
		CreatedAt:        r.CreatedAt,
	}
}

// TraverseResponse is one hop of a traversal
type TraverseResponse struct {
	EntityID         uuid.UUID `json:"entity_id"`
	RelationshipID   uuid.UUID `json:"relationship_id"`
	Direction        string    `json:"direction"`
	RelationshipType string    `json:"relationship_type"`
}
