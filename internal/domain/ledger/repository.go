package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository persists transactions. Posting is atomic across header and all
// lines: either every row is durably written or none are.
type Repository interface {
	// CreateAtomic writes the header and all lines in one storage
	// transaction. Partial writes are a defect, not an accepted failure
	// mode.
	CreateAtomic(ctx context.Context, t *Transaction) error

	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*Transaction, error)

	// UpdateStatus annotates a posted transaction (the only mutation
	// allowed after posting).
	UpdateStatus(ctx context.Context, t *Transaction) error

	// GetBalance sums signed line amounts of all posted transactions
	// referencing the entity up to and including asOf. Reversed
	// transactions and their reversals both count; nothing is excluded.
	GetBalance(ctx context.Context, organizationID, entityID uuid.UUID, asOf time.Time) (decimal.Decimal, error)

	// GetBalances is GetBalance over many entities in one round-trip.
	// Entities with no lines are absent from the result.
	GetBalances(ctx context.Context, organizationID uuid.UUID, entityIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]decimal.Decimal, error)

	// CountNonVoidedLinesForEntity counts lines of non-voided transactions
	// referencing the entity. Used to refuse soft-deletes.
	CountNonVoidedLinesForEntity(ctx context.Context, organizationID, entityID uuid.UUID) (int64, error)

	// CountDraftInRange counts draft transactions dated inside [start, end].
	// The close engine refuses to close a period with unposted activity.
	CountDraftInRange(ctx context.Context, organizationID uuid.UUID, start, end time.Time) (int64, error)
}
