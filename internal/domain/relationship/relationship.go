package relationship

import (
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/shared"
)

// Direction selects which end of an edge a traversal follows
type Direction string

const (
	DirectionForward Direction = "forward" // from -> to
	DirectionInverse Direction = "inverse" // to -> from
	DirectionBoth    Direction = "both"
)

// IsValid checks if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionForward || d == DirectionInverse || d == DirectionBoth
}

// Relationship is a typed directed edge between two entities of the same
// organization. Edges are deactivated when the association ends, never
// deleted.
type Relationship struct {
	shared.OrgAggregateRoot
	FromEntityID     uuid.UUID
	ToEntityID       uuid.UUID
	RelationshipType string
	SmartCode        string
	Strength         *float64
	RelationshipData shared.JSONMap
	IsActive         bool
	EffectiveDate    *time.Time
	ExpirationDate   *time.Time
}

// New creates an active relationship. Endpoint organization membership is
// the caller's to verify before insert; this constructor only validates
// shape.
func New(organizationID, from, to uuid.UUID, relationshipType, smartCode string, data shared.JSONMap) (*Relationship, error) {
	if organizationID == uuid.Nil {
		return nil, shared.ErrMissingOrganizationID
	}
	if from == uuid.Nil || to == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ENDPOINT", "Both endpoints are required")
	}
	if from == to {
		return nil, shared.NewValidationError("INVALID_ENDPOINT", "An entity cannot relate to itself")
	}
	if relationshipType == "" {
		return nil, shared.NewValidationError("INVALID_RELATIONSHIP_TYPE", "Relationship type cannot be empty")
	}
	if smartCode == "" {
		return nil, shared.NewValidationError(shared.ErrInvalidSmartCode.Code, "Smart code is required")
	}
	if data == nil {
		data = shared.JSONMap{}
	}

	return &Relationship{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		FromEntityID:     from,
		ToEntityID:       to,
		RelationshipType: relationshipType,
		SmartCode:        smartCode,
		RelationshipData: data,
		IsActive:         true,
	}, nil
}

// Deactivate ends the association, stamping the expiration date
func (r *Relationship) Deactivate() {
	if !r.IsActive {
		return
	}
	now := time.Now()
	r.IsActive = false
	r.ExpirationDate = &now
	r.Touch()
}

// SetStrength attaches an optional strength payload
func (r *Relationship) SetStrength(strength float64) {
	r.Strength = &strength
}

// IsEffectiveAt reports whether the edge is active within its effective
// window at the given time
func (r *Relationship) IsEffectiveAt(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EffectiveDate != nil && t.Before(*r.EffectiveDate) {
		return false
	}
	if r.ExpirationDate != nil && t.After(*r.ExpirationDate) {
		return false
	}
	return true
}
