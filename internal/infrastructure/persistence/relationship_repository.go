package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/relationship"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// defaultTraversalLimit bounds a traverse call when the caller passes zero
const defaultTraversalLimit = 100

// GormRelationshipRepository implements relationship.Repository using GORM
type GormRelationshipRepository struct {
	db *gorm.DB
}

// NewGormRelationshipRepository creates a new GormRelationshipRepository
func NewGormRelationshipRepository(db *gorm.DB) *GormRelationshipRepository {
	return &GormRelationshipRepository{db: db}
}

// Create persists a new relationship
func (r *GormRelationshipRepository) Create(ctx context.Context, rel *relationship.Relationship) error {
	model := models.RelationshipModelFromDomain(rel)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a relationship by ID within an organization
func (r *GormRelationshipRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*relationship.Relationship, error) {
	var model models.RelationshipModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Update persists changes to a relationship with optimistic locking
func (r *GormRelationshipRepository) Update(ctx context.Context, rel *relationship.Relationship) error {
	model := models.RelationshipModelFromDomain(rel)
	result := r.db.WithContext(ctx).
		Model(&models.RelationshipModel{}).
		Where("organization_id = ? AND id = ? AND version = ?", model.OrganizationID, model.ID, model.Version).
		Updates(map[string]interface{}{
			"strength":          model.Strength,
			"relationship_data": model.RelationshipData,
			"is_active":         model.IsActive,
			"effective_date":    model.EffectiveDate,
			"expiration_date":   model.ExpirationDate,
			"updated_at":        model.UpdatedAt,
			"version":           model.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	rel.IncrementVersion()
	return nil
}

// Traverse returns the active edges of one type touching the entity in the
// given direction
func (r *GormRelationshipRepository) Traverse(ctx context.Context, organizationID, entityID uuid.UUID, relationshipType string, direction relationship.Direction, limit int) ([]relationship.TraversalStep, error) {
	if !direction.IsValid() {
		return nil, shared.NewValidationError("INVALID_DIRECTION", "Traversal direction must be forward, inverse or both")
	}
	if limit <= 0 {
		limit = defaultTraversalLimit
	}

	steps := make([]relationship.TraversalStep, 0)
	if direction == relationship.DirectionForward || direction == relationship.DirectionBoth {
		forward, err := r.traverseOne(ctx, organizationID, entityID, relationshipType, relationship.DirectionForward, limit)
		if err != nil {
			return nil, err
		}
		steps = append(steps, forward...)
	}
	if direction == relationship.DirectionInverse || direction == relationship.DirectionBoth {
		remaining := limit - len(steps)
		if remaining <= 0 {
			return steps, nil
		}
		inverse, err := r.traverseOne(ctx, organizationID, entityID, relationshipType, relationship.DirectionInverse, remaining)
		if err != nil {
			return nil, err
		}
		if direction == relationship.DirectionBoth {
			// merging both sweeps: a reciprocal edge pair must not
			// yield the same neighbor twice
			seen := make(map[uuid.UUID]struct{}, len(steps))
			for _, s := range steps {
				seen[s.EntityID] = struct{}{}
			}
			for _, s := range inverse {
				if _, dup := seen[s.EntityID]; dup {
					continue
				}
				seen[s.EntityID] = struct{}{}
				steps = append(steps, s)
			}
		} else {
			steps = append(steps, inverse...)
		}
	}
	return steps, nil
}

func (r *GormRelationshipRepository) traverseOne(ctx context.Context, organizationID, entityID uuid.UUID, relationshipType string, direction relationship.Direction, limit int) ([]relationship.TraversalStep, error) {
	anchorColumn, yieldColumn := "from_entity_id", "to_entity_id"
	if direction == relationship.DirectionInverse {
		anchorColumn, yieldColumn = "to_entity_id", "from_entity_id"
	}

	query := r.db.WithContext(ctx).
		Model(&models.RelationshipModel{}).
		Where("organization_id = ? AND "+anchorColumn+" = ? AND is_active = ?", organizationID, entityID, true)
	if relationshipType != "" {
		query = query.Where("relationship_type = ?", relationshipType)
	}

	var rows []struct {
		ID       uuid.UUID
		EntityID uuid.UUID
	}
	if err := query.
		Select("id, " + yieldColumn + " AS entity_id").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	steps := make([]relationship.TraversalStep, len(rows))
	for i, row := range rows {
		steps[i] = relationship.TraversalStep{
			RelationshipID: row.ID,
			EntityID:       row.EntityID,
			Direction:      direction,
		}
	}
	return steps, nil
}

// CountActiveForEntity counts active edges touching the entity on either end
func (r *GormRelationshipRepository) CountActiveForEntity(ctx context.Context, organizationID, entityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RelationshipModel{}).
		Where("organization_id = ? AND is_active = ? AND (from_entity_id = ? OR to_entity_id = ?)",
			organizationID, true, entityID, entityID).
		Count(&count).Error
	return count, err
}
