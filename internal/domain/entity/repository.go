package entity

import (
	"context"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/shared"
)

// Repository persists entities and their dynamic fields. Every method is
// organization-scoped; implementations must never return rows belonging to
// another organization.
type Repository interface {
	Create(ctx context.Context, e *Entity) error
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*Entity, error)
	FindByTypeAndCode(ctx context.Context, organizationID uuid.UUID, entityType, entityCode string) (*Entity, error)
	List(ctx context.Context, organizationID uuid.UUID, entityType string, filter shared.Filter) ([]Entity, int64, error)

	// ListByType returns every non-deleted entity of a type, unpaged.
	// Used by the close engine to sweep the chart of accounts.
	ListByType(ctx context.Context, organizationID uuid.UUID, entityType string) ([]Entity, error)
	Update(ctx context.Context, e *Entity) error

	// UpdateStatusIf performs a conditional status transition and reports
	// whether the row was in the expected state. This is the single-writer
	// primitive the fiscal close engine relies on.
	UpdateStatusIf(ctx context.Context, organizationID, id uuid.UUID, from, to Status) (bool, error)

	UpsertDynamicField(ctx context.Context, f *DynamicField) error
	FindDynamicFields(ctx context.Context, organizationID, entityID uuid.UUID) ([]DynamicField, error)
}
