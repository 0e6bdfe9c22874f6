package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/organization"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements organization.Repository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Save persists a new organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *organization.Organization) error {
	model := models.OrganizationModelFromDomain(org)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Update persists changes to an organization with optimistic locking
func (r *GormOrganizationRepository) Update(ctx context.Context, org *organization.Organization) error {
	model := models.OrganizationModelFromDomain(org)
	result := r.db.WithContext(ctx).
		Model(&models.OrganizationModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"status":     model.Status,
			"settings":   model.Settings,
			"updated_at": model.UpdatedAt,
			"version":    model.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	org.IncrementVersion()
	return nil
}
