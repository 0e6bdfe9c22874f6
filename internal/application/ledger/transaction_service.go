package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/fiscal"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/smartcode"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService posts, reverses and queries transactions. Posting is
// all-or-nothing: the header and every line are validated first, then
// written in one storage transaction.
type TransactionService struct {
	transactions ledger.Repository
	entities     entity.Repository
	codes        *smartcode.Checker
	logger       *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactions ledger.Repository,
	entities entity.Repository,
	codes *smartcode.Checker,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		entities:     entities,
		codes:        codes,
		logger:       logger,
	}
}

// Post validates and durably writes a transaction with its lines. For
// ledger-bearing types the target fiscal period must not be closed or in
// the middle of closing.
func (s *TransactionService) Post(ctx context.Context, organizationID uuid.UUID, req PostTransactionRequest) (*TransactionResponse, error) {
	if _, err := s.codes.Check(ctx, req.SmartCode); err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if _, err := s.codes.Check(ctx, line.SmartCode); err != nil {
			return nil, err
		}
	}

	if ledger.IsLedgerBearing(req.TransactionType) {
		if err := s.checkPeriodOpen(ctx, organizationID, req.TransactionDate); err != nil {
			return nil, err
		}
	}

	txn, err := ledger.NewTransaction(organizationID, req.TransactionType, req.TransactionCode,
		req.TransactionDate, req.SmartCode, req.TotalAmount)
	if err != nil {
		return nil, err
	}
	txn.FromEntityID = req.FromEntityID
	txn.ToEntityID = req.ToEntityID
	if req.Metadata != nil {
		txn.Metadata = req.Metadata.Copy()
	}

	for _, lr := range req.Lines {
		line, err := s.buildLine(lr)
		if err != nil {
			return nil, err
		}
		if err := txn.AddLine(line); err != nil {
			return nil, err
		}
	}

	if err := txn.Post(); err != nil {
		return nil, err
	}

	// once validation has passed the write must not be torn by a caller
	// disconnect; the storage transaction still bounds it
	if err := s.transactions.CreateAtomic(context.WithoutCancel(ctx), txn); err != nil {
		return nil, err
	}

	s.logger.Info("transaction posted",
		zap.String("organization_id", organizationID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("type", txn.TransactionType),
		zap.Int("lines", len(txn.Lines)))

	return NewTransactionResponse(txn), nil
}

// Get returns one transaction with its lines
func (s *TransactionService) Get(ctx context.Context, organizationID, id uuid.UUID) (*TransactionResponse, error) {
	txn, err := s.transactions.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	return NewTransactionResponse(txn), nil
}

// Reverse posts a mirror-image correcting transaction and annotates the
// original as reversed. The original rows are never edited.
func (s *TransactionService) Reverse(ctx context.Context, organizationID, id uuid.UUID, reversalCode string, reversalDate time.Time) (*TransactionResponse, error) {
	if reversalCode == "" {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_CODE", "Reversal code cannot be empty")
	}
	if reversalDate.IsZero() {
		reversalDate = time.Now().UTC()
	}

	original, err := s.transactions.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	rev, err := original.BuildReversal(reversalCode, reversalDate)
	if err != nil {
		return nil, err
	}

	// the reversal posts into its own period, which must itself be open
	if ledger.IsLedgerBearing(rev.TransactionType) {
		if err := s.checkPeriodOpen(ctx, organizationID, reversalDate); err != nil {
			return nil, err
		}
	}

	if err := rev.Post(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.transactions.CreateAtomic(ctx, rev); err != nil {
		return nil, err
	}
	if err := original.MarkReversed(rev.ID); err != nil {
		return nil, err
	}
	if err := s.transactions.UpdateStatus(ctx, original); err != nil {
		// the reversal itself is durable; surface the annotation failure
		s.logger.Error("failed to annotate reversed transaction",
			zap.String("transaction_id", original.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("transaction reversed",
		zap.String("organization_id", organizationID.String()),
		zap.String("original_id", original.ID.String()),
		zap.String("reversal_id", rev.ID.String()))

	return NewTransactionResponse(rev), nil
}

// GetBalance returns the entity's signed balance as of a date. The entity
// must be visible inside the organization.
func (s *TransactionService) GetBalance(ctx context.Context, organizationID, entityID uuid.UUID, asOf time.Time) (*BalanceResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	if _, err := s.entities.FindByID(ctx, organizationID, entityID); err != nil {
		return nil, err
	}

	balance, err := s.transactions.GetBalance(ctx, organizationID, entityID, asOf)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{EntityID: entityID, AsOf: asOf, Balance: balance}, nil
}

// checkPeriodOpen rejects postings dated inside a closed or closing fiscal
// period. A period with no entity row is treated as open; period rows are
// provisioned lazily by the fiscal module.
func (s *TransactionService) checkPeriodOpen(ctx context.Context, organizationID uuid.UUID, date time.Time) error {
	period := fiscal.PeriodForDate(date.UTC())
	row, err := s.entities.FindByTypeAndCode(ctx, organizationID, entity.TypeFiscalPeriod, period.Code())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	switch row.Status {
	case entity.StatusClosed, entity.StatusClosing:
		return shared.NewInvariantViolation(
			shared.ErrPeriodClosed.Code,
			fmt.Sprintf("Fiscal period %s is not open for posting", period.Code()),
		)
	}
	return nil
}

// buildLine maps one request line to a domain line, flagging ledger lines
// with their debit/credit side.
func (s *TransactionService) buildLine(lr PostLineRequest) (ledger.Line, error) {
	quantity := decimal.NewFromInt(1)
	if lr.Quantity != nil {
		quantity = *lr.Quantity
	}
	unitPrice := decimal.Zero
	if lr.UnitPrice != nil {
		unitPrice = *lr.UnitPrice
	}

	if lr.Side != "" {
		side := ledger.Side(lr.Side)
		if !side.IsValid() {
			return ledger.Line{}, shared.NewValidationError("INVALID_LINE_SIDE", "Line side must be debit or credit")
		}
		line := ledger.NewLedgerLine(lr.LineNumber, lr.LineEntityID, side, lr.LineAmount, lr.SmartCode)
		for k, v := range lr.Metadata {
			if _, ok := line.Metadata[k]; !ok {
				line.Metadata[k] = v
			}
		}
		return line, nil
	}

	line := ledger.NewLine(lr.LineNumber, lr.LineEntityID, quantity, unitPrice, lr.LineAmount, lr.SmartCode)
	if lr.Metadata != nil {
		line.Metadata = lr.Metadata.Copy()
	}
	return line, nil
}
