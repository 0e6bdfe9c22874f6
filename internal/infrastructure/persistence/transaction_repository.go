package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.Repository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// CreateAtomic writes the header and all lines in one storage transaction
func (r *GormTransactionRepository) CreateAtomic(ctx context.Context, t *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(t)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(model).Error; err != nil {
			return err
		}
		for i := range model.Lines {
			if err := tx.Create(&model.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreFailure, err)
	}
	return nil
}

// FindByID finds a transaction with its lines, ordered by line number
func (r *GormTransactionRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateStatus annotates a transaction's status and metadata, the only
// mutation allowed after posting
func (r *GormTransactionRepository) UpdateStatus(ctx context.Context, t *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(t)
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("organization_id = ? AND id = ?", model.OrganizationID, model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"metadata":   model.Metadata,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// balanceRow is the projection balance queries sum over. The side flag
// lives inside the metadata document, so signing happens here rather than
// in dialect-specific JSON SQL.
type balanceRow struct {
	LineEntityID uuid.UUID
	LineAmount   decimal.Decimal
	Metadata     shared.JSONMap
}

func signedAmount(row balanceRow) decimal.Decimal {
	if side, ok := row.Metadata["side"].(string); ok && ledger.Side(side) == ledger.SideCredit {
		return row.LineAmount.Neg()
	}
	return row.LineAmount
}

// postedStatuses are the header statuses whose lines count toward balances.
// A reversed transaction stays in the ledger; its reversal nets it out.
var postedStatuses = []string{string(ledger.StatusPosted), string(ledger.StatusReversed)}

// GetBalance sums signed line amounts for one entity up to and including asOf
func (r *GormTransactionRepository) GetBalance(ctx context.Context, organizationID, entityID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	balances, err := r.GetBalances(ctx, organizationID, []uuid.UUID{entityID}, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	if balance, ok := balances[entityID]; ok {
		return balance, nil
	}
	return decimal.Zero, nil
}

// GetBalances sums signed line amounts for many entities in one round-trip.
// Entities with no posted lines are absent from the result.
func (r *GormTransactionRepository) GetBalances(ctx context.Context, organizationID uuid.UUID, entityIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	balances := make(map[uuid.UUID]decimal.Decimal, len(entityIDs))
	if len(entityIDs) == 0 {
		return balances, nil
	}

	var rows []balanceRow
	err := r.db.WithContext(ctx).
		Model(&models.TransactionLineModel{}).
		Select("universal_transaction_lines.line_entity_id, universal_transaction_lines.line_amount, universal_transaction_lines.metadata").
		Joins("JOIN universal_transactions ON universal_transactions.id = universal_transaction_lines.transaction_id").
		Where("universal_transaction_lines.organization_id = ?", organizationID).
		Where("universal_transaction_lines.line_entity_id IN ?", entityIDs).
		Where("universal_transactions.status IN ?", postedStatuses).
		Where("universal_transactions.transaction_date <= ?", asOf).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		balances[row.LineEntityID] = balances[row.LineEntityID].Add(signedAmount(row))
	}
	return balances, nil
}

// CountNonVoidedLinesForEntity counts lines of non-voided transactions
// referencing the entity
func (r *GormTransactionRepository) CountNonVoidedLinesForEntity(ctx context.Context, organizationID, entityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionLineModel{}).
		Joins("JOIN universal_transactions ON universal_transactions.id = universal_transaction_lines.transaction_id").
		Where("universal_transaction_lines.organization_id = ?", organizationID).
		Where("universal_transaction_lines.line_entity_id = ?", entityID).
		Where("universal_transactions.status <> ?", string(ledger.StatusVoided)).
		Count(&count).Error
	return count, err
}

// CountDraftInRange counts draft transactions dated inside [start, end]
func (r *GormTransactionRepository) CountDraftInRange(ctx context.Context, organizationID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("organization_id = ? AND status = ?", organizationID, string(ledger.StatusDraft)).
		Where("transaction_date >= ? AND transaction_date <= ?", start, end).
		Count(&count).Error
	return count, err
}
