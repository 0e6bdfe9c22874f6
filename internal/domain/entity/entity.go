package entity

import (
	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/shared"
)

// Status represents the entity lifecycle state. Entities are soft-deleted by
// status transition and never physically removed while referenced.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"

	// Fiscal-period entities reuse the status column for their own
	// lifecycle (see the fiscal package).
	StatusOpen    Status = "open"
	StatusClosing Status = "closing"
	StatusClosed  Status = "closed"
)

// IsValid checks if the status is a known Status value
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted, StatusOpen, StatusClosing, StatusClosed:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// Well-known entity types. The discriminator is free text; these are the
// types the core itself depends on.
const (
	TypeGLAccount    = "gl_account"
	TypeFiscalPeriod = "fiscal_period"
)

// Entity is the polymorphic master-data aggregate: any business "thing"
// (customer, product, GL account, fiscal period) is one row with a type
// discriminator and a smart code carrying its meaning.
type Entity struct {
	shared.OrgAggregateRoot
	EntityType string
	EntityName string
	EntityCode string // optional; unique per (organization, type) when present
	SmartCode  string
	Status     Status
	Metadata   shared.JSONMap
}

// New creates an entity. The smart code must already have passed the
// validator; storage enforces code uniqueness on insert.
func New(organizationID uuid.UUID, entityType, entityName, entityCode, smartCode string) (*Entity, error) {
	if organizationID == uuid.Nil {
		return nil, shared.ErrMissingOrganizationID
	}
	if entityType == "" {
		return nil, shared.NewValidationError("INVALID_ENTITY_TYPE", "Entity type cannot be empty")
	}
	if entityName == "" {
		return nil, shared.NewValidationError("INVALID_ENTITY_NAME", "Entity name cannot be empty")
	}
	if smartCode == "" {
		return nil, shared.NewValidationError(shared.ErrInvalidSmartCode.Code, "Smart code is required")
	}

	return &Entity{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		EntityType:       entityType,
		EntityName:       entityName,
		EntityCode:       entityCode,
		SmartCode:        smartCode,
		Status:           StatusActive,
		Metadata:         shared.JSONMap{},
	}, nil
}

// Patch carries a partial update. Nil fields are left untouched; the
// metadata patch uses merge semantics (nil values delete keys).
type Patch struct {
	EntityName *string
	SmartCode  *string
	Status     *Status
	Metadata   shared.JSONMap
}

// Apply merges the patch into the entity. Organization ID and entity ID can
// never change; type changes are rejected because referenced rows would
// silently change meaning.
func (e *Entity) Apply(p Patch) error {
	if p.EntityName != nil {
		if *p.EntityName == "" {
			return shared.NewValidationError("INVALID_ENTITY_NAME", "Entity name cannot be empty")
		}
		e.EntityName = *p.EntityName
	}
	if p.SmartCode != nil {
		e.SmartCode = *p.SmartCode
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return shared.NewValidationError("INVALID_STATUS", "Unknown entity status")
		}
		e.Status = *p.Status
	}
	if p.Metadata != nil {
		e.Metadata = e.Metadata.Merge(p.Metadata)
	}
	e.Touch()
	return nil
}

// SoftDelete transitions the entity to deleted. Callers must verify the
// entity is unreferenced first.
func (e *Entity) SoftDelete() {
	e.Status = StatusDeleted
	e.Touch()
}

// IsDeleted reports whether the entity has been soft-deleted
func (e *Entity) IsDeleted() bool {
	return e.Status == StatusDeleted
}
