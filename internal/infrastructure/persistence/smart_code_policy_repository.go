package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hera/backend/internal/domain/smartcode"
	"github.com/hera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSmartCodePolicyRepository implements smartcode.PolicyProvider using
// GORM. Registering a new industry is a row insert, not a code change.
type GormSmartCodePolicyRepository struct {
	db *gorm.DB
}

// NewGormSmartCodePolicyRepository creates a new GormSmartCodePolicyRepository
func NewGormSmartCodePolicyRepository(db *gorm.DB) *GormSmartCodePolicyRepository {
	return &GormSmartCodePolicyRepository{db: db}
}

// FindIndustry returns the policy row for an industry, or nil when the
// industry is not registered
func (r *GormSmartCodePolicyRepository) FindIndustry(ctx context.Context, industry string) (*smartcode.IndustryPolicy, error) {
	var model models.SmartCodePolicyModel
	err := r.db.WithContext(ctx).
		Where("industry = ?", strings.ToUpper(industry)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	policy := model.ToDomain()
	return &policy, nil
}

// ListIndustries returns every registered industry policy
func (r *GormSmartCodePolicyRepository) ListIndustries(ctx context.Context) ([]smartcode.IndustryPolicy, error) {
	var policyModels []models.SmartCodePolicyModel
	if err := r.db.WithContext(ctx).
		Order("industry ASC").
		Find(&policyModels).Error; err != nil {
		return nil, err
	}

	policies := make([]smartcode.IndustryPolicy, len(policyModels))
	for i := range policyModels {
		policies[i] = policyModels[i].ToDomain()
	}
	return policies, nil
}

// Upsert registers or updates an industry policy
func (r *GormSmartCodePolicyRepository) Upsert(ctx context.Context, policy smartcode.IndustryPolicy) error {
	policy.Industry = strings.ToUpper(policy.Industry)
	policy.UpdatedAt = time.Now()
	model := models.SmartCodePolicyModelFromDomain(policy)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "industry"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_version", "is_active", "updated_at"}),
		}).
		Create(model).Error
}
