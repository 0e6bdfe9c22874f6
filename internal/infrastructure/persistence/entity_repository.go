package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// EntitySortFields contains allowed sort fields for entities
var EntitySortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"entity_name": true,
	"entity_code": true,
	"entity_type": true,
	"status":      true,
}

// GormEntityRepository implements entity.Repository using GORM
type GormEntityRepository struct {
	db *gorm.DB
}

// NewGormEntityRepository creates a new GormEntityRepository
func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{db: db}
}

// isDuplicateKey reports whether the error is a unique constraint violation.
// String matching covers drivers that do not translate to gorm's sentinel.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// Create persists a new entity. A non-empty entity code must be unique per
// organization and type.
func (r *GormEntityRepository) Create(ctx context.Context, e *entity.Entity) error {
	if e.EntityCode != "" {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&models.EntityModel{}).
			Where("organization_id = ? AND entity_type = ? AND entity_code = ? AND status <> ?",
				e.OrganizationID, e.EntityType, e.EntityCode, string(entity.StatusDeleted)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrDuplicateEntityCode
		}
	}

	model := models.EntityModelFromDomain(e)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicateEntityCode
		}
		return err
	}
	return nil
}

// FindByID finds an entity by ID within an organization
func (r *GormEntityRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*entity.Entity, error) {
	var model models.EntityModel
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

// FindByTypeAndCode finds an entity by its type and code within an organization
func (r *GormEntityRepository) FindByTypeAndCode(ctx context.Context, organizationID uuid.UUID, entityType, entityCode string) (*entity.Entity, error) {
	var model models.EntityModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND entity_type = ? AND entity_code = ? AND status <> ?",
			organizationID, entityType, entityCode, string(entity.StatusDeleted)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds entities matching the filter, excluding soft-deleted rows
func (r *GormEntityRepository) List(ctx context.Context, organizationID uuid.UUID, entityType string, filter shared.Filter) ([]entity.Entity, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.EntityModel{}).
		Where("organization_id = ? AND status <> ?", organizationID, string(entity.StatusDeleted))
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("entity_name LIKE ? OR entity_code LIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if smartCode, ok := filter.Filters["smart_code"]; ok {
		query = query.Where("smart_code = ?", smartCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, EntitySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var entityModels []models.EntityModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&entityModels).Error; err != nil {
		return nil, 0, err
	}

	entities := make([]entity.Entity, len(entityModels))
	for i := range entityModels {
		entities[i] = *entityModels[i].ToDomain()
	}
	return entities, total, nil
}

// ListByType returns every non-deleted entity of a type, unpaged
func (r *GormEntityRepository) ListByType(ctx context.Context, organizationID uuid.UUID, entityType string) ([]entity.Entity, error) {
	var entityModels []models.EntityModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND entity_type = ? AND status <> ?",
			organizationID, entityType, string(entity.StatusDeleted)).
		Order("entity_code ASC, created_at ASC").
		Find(&entityModels).Error; err != nil {
		return nil, err
	}

	entities := make([]entity.Entity, len(entityModels))
	for i := range entityModels {
		entities[i] = *entityModels[i].ToDomain()
	}
	return entities, nil
}

// Update persists changes to an entity with optimistic locking
func (r *GormEntityRepository) Update(ctx context.Context, e *entity.Entity) error {
	model := models.EntityModelFromDomain(e)
	result := r.db.WithContext(ctx).
		Model(&models.EntityModel{}).
		Where("organization_id = ? AND id = ? AND version = ?", model.OrganizationID, model.ID, model.Version).
		Updates(map[string]interface{}{
			"entity_name": model.EntityName,
			"entity_code": model.EntityCode,
			"smart_code":  model.SmartCode,
			"status":      model.Status,
			"metadata":    model.Metadata,
			"updated_at":  model.UpdatedAt,
			"version":     model.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	e.IncrementVersion()
	return nil
}

// UpdateStatusIf performs a conditional status transition. It reports false
// without error when the row exists but is not in the expected state.
func (r *GormEntityRepository) UpdateStatusIf(ctx context.Context, organizationID, id uuid.UUID, from, to entity.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EntityModel{}).
		Where("organization_id = ? AND id = ? AND status = ?", organizationID, id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertDynamicField writes a dynamic field value, superseding any existing
// value for the same entity and field name
func (r *GormEntityRepository) UpsertDynamicField(ctx context.Context, f *entity.DynamicField) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DynamicFieldModel
		err := tx.
			Where("organization_id = ? AND entity_id = ? AND field_name = ?",
				f.OrganizationID, f.EntityID, f.FieldName).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		model := models.DynamicFieldModelFromDomain(f)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(model).Error
		}

		// Keep the original row identity so the update supersedes in place
		f.ID = existing.ID
		f.CreatedAt = existing.CreatedAt
		return tx.Model(&models.DynamicFieldModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"field_type":    model.FieldType,
				"smart_code":    model.SmartCode,
				"value_text":    model.ValueText,
				"value_number":  model.ValueNumber,
				"value_boolean": model.ValueBoolean,
				"value_date":    model.ValueDate,
				"value_json":    model.ValueJSON,
				"updated_at":    model.UpdatedAt,
			}).Error
	})
}

// FindDynamicFields returns all dynamic fields of an entity
func (r *GormEntityRepository) FindDynamicFields(ctx context.Context, organizationID, entityID uuid.UUID) ([]entity.DynamicField, error) {
	var fieldModels []models.DynamicFieldModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND entity_id = ?", organizationID, entityID).
		Order("field_name ASC").
		Find(&fieldModels).Error; err != nil {
		return nil, err
	}

	fields := make([]entity.DynamicField, len(fieldModels))
	for i := range fieldModels {
		fields[i] = *fieldModels[i].ToDomain()
	}
	return fields, nil
}
