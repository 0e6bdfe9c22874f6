package relationship

import (
	"context"

	"github.com/google/uuid"
)

// TraversalStep is one connected entity id yielded by a traverse call.
// Traversal is single-hop; multi-hop walks are the caller's loop.
type TraversalStep struct {
	RelationshipID uuid.UUID `json:"relationship_id"`
	EntityID       uuid.UUID `json:"entity_id"`
	Direction      Direction `json:"direction"`
}

// Repository persists relationships. All methods are organization-scoped.
type Repository interface {
	Create(ctx context.Context, r *Relationship) error
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*Relationship, error)
	Update(ctx context.Context, r *Relationship) error

	// Traverse returns the active edges of one type touching the entity in
	// the given direction. The result is finite and bounded by limit;
	// a zero limit applies the store default.
	Traverse(ctx context.Context, organizationID, entityID uuid.UUID, relationshipType string, direction Direction, limit int) ([]TraversalStep, error)

	// CountActiveForEntity counts active edges touching the entity on
	// either end. Used to refuse soft-deletes of referenced entities.
	CountActiveForEntity(ctx context.Context, organizationID, entityID uuid.UUID) (int64, error)
}
