package fiscal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/fiscal"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/smartcode"
	"go.uber.org/zap"
)

// SmartCodePeriod is stamped on provisioned fiscal-period entities
const SmartCodePeriod = "HERA.FIN.FISCAL.PERIOD.MONTH.v1"

// CloseService runs the period close: validate, aggregate revenue and
// expense balances, build the balanced closing entry, post it and lock the
// period. Every step before the lock is a pure read; the lock is taken with
// a conditional status transition so concurrent closers lose cleanly.
type CloseService struct {
	entities     entity.Repository
	transactions ledger.Repository
	logger       *zap.Logger
}

// NewCloseService creates a new CloseService
func NewCloseService(entities entity.Repository, transactions ledger.Repository, logger *zap.Logger) *CloseService {
	return &CloseService{
		entities:     entities,
		transactions: transactions,
		logger:       logger,
	}
}

// ValidationError wraps the full validation report so callers see every
// problem at once instead of fixing them one 400 at a time.
type ValidationError struct {
	Report fiscal.ValidationReport
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Report.Issues))
	for i, issue := range e.Report.Issues {
		codes[i] = issue.Code
	}
	return "close validation failed: " + strings.Join(codes, ", ")
}

// Preview computes the would-be closing entry without writing anything.
// Running it twice yields the same result; it takes no locks.
func (s *CloseService) Preview(ctx context.Context, organizationID uuid.UUID, req CloseRequest) (*fiscal.ClosePreview, error) {
	req.applyDefaults()
	period, err := fiscal.NewPeriod(req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	report, accts, err := s.validate(ctx, organizationID, period, req)
	if err != nil {
		return nil, err
	}
	if !report.OK() {
		return nil, &ValidationError{Report: *report}
	}

	preview, err := s.buildPreview(ctx, organizationID, period, accts)
	if err != nil {
		return nil, err
	}
	return preview, nil
}

// Close validates, locks the period, posts the closing entry and marks the
// period closed. Exactly one concurrent caller wins the open-to-closing
// transition; the rest see PERIOD_ALREADY_CLOSED or CLOSE_PENDING.
func (s *CloseService) Close(ctx context.Context, organizationID uuid.UUID, req CloseRequest) (*fiscal.CloseResult, error) {
	req.applyDefaults()
	period, err := fiscal.NewPeriod(req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	report, accts, err := s.validate(ctx, organizationID, period, req)
	if err != nil {
		return nil, err
	}
	if !report.OK() {
		return nil, &ValidationError{Report: *report}
	}

	preview, err := s.buildPreview(ctx, organizationID, period, accts)
	if err != nil {
		return nil, err
	}

	// take the single-writer lock
	won, err := s.entities.UpdateStatusIf(ctx, organizationID, accts.period.ID, entity.StatusOpen, entity.StatusClosing)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.loserError(ctx, organizationID, accts.period.ID)
	}

	// past this point a caller disconnect must not tear the close
	ctx = context.WithoutCancel(ctx)

	code := req.TransactionCode
	if code == "" {
		code = "CLOSE-" + period.Code()
	}
	txn, netIncome, err := fiscal.BuildClosingEntry(organizationID, code, period.End(),
		preview.Revenue, preview.Expenses, accts.currentYearEarnings.ID, accts.retainedEarnings.ID)
	if err != nil {
		s.unlock(ctx, organizationID, accts.period.ID)
		return nil, err
	}

	var txnID *uuid.UUID
	if len(txn.Lines) > 0 {
		if err := txn.Post(); err != nil {
			s.unlock(ctx, organizationID, accts.period.ID)
			return nil, err
		}
		if err := s.transactions.CreateAtomic(ctx, txn); err != nil {
			s.unlock(ctx, organizationID, accts.period.ID)
			return nil, err
		}
		txnID = &txn.ID
	}

	closedAt := time.Now().UTC()
	accts.period.Metadata["closed_at"] = closedAt.Format(time.RFC3339)
	accts.period.Metadata["net_income"] = netIncome.String()
	if txnID != nil {
		accts.period.Metadata["closing_transaction_id"] = txnID.String()
	}
	if err := s.entities.Update(ctx, accts.period); err != nil {
		s.logger.Error("failed to annotate closed period",
			zap.String("period", period.Code()), zap.Error(err))
	}
	if _, err := s.entities.UpdateStatusIf(ctx, organizationID, accts.period.ID, entity.StatusClosing, entity.StatusClosed); err != nil {
		return nil, err
	}

	s.logger.Info("fiscal period closed",
		zap.String("organization_id", organizationID.String()),
		zap.String("period", period.Code()),
		zap.String("net_income", netIncome.String()))

	return &fiscal.CloseResult{
		Preview:       *preview,
		TransactionID: txnID,
		ClosedAt:      closedAt,
	}, nil
}

// GeneratePeriods provisions the twelve fiscal-period entities for a year.
// Existing periods are left untouched, so the call is idempotent.
func (s *CloseService) GeneratePeriods(ctx context.Context, organizationID uuid.UUID, year int) ([]PeriodResponse, error) {
	if _, err := fiscal.NewPeriod(year, 1); err != nil {
		return nil, err
	}

	out := make([]PeriodResponse, 0, 12)
	for month := 1; month <= 12; month++ {
		period, _ := fiscal.NewPeriod(year, month)
		existing, err := s.entities.FindByTypeAndCode(ctx, organizationID, entity.TypeFiscalPeriod, period.Code())
		if err == nil {
			out = append(out, PeriodResponse{Code: existing.EntityCode, Name: existing.EntityName, Status: existing.Status.String()})
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		name := fmt.Sprintf("%s %d", period.Month.String(), period.Year)
		e, err := entity.New(organizationID, entity.TypeFiscalPeriod, name, period.Code(), SmartCodePeriod)
		if err != nil {
			return nil, err
		}
		e.Status = entity.StatusOpen
		if err := s.entities.Create(ctx, e); err != nil {
			if errors.Is(err, shared.ErrDuplicateEntityCode) {
				// another caller provisioned it first
				continue
			}
			return nil, err
		}
		out = append(out, PeriodResponse{Code: e.EntityCode, Name: e.EntityName, Status: e.Status.String()})
	}

	s.logger.Info("fiscal periods provisioned",
		zap.String("organization_id", organizationID.String()),
		zap.Int("year", year))
	return out, nil
}

// closeAccounts is the set of rows the close engine resolves up front
type closeAccounts struct {
	period              *entity.Entity
	currentYearEarnings *entity.Entity
	retainedEarnings    *entity.Entity
}

// validate collects every problem that would block the close. It never
// writes; a failed validation leaves no trace.
func (s *CloseService) validate(ctx context.Context, organizationID uuid.UUID, period fiscal.Period, req CloseRequest) (*fiscal.ValidationReport, *closeAccounts, error) {
	report := &fiscal.ValidationReport{}
	accts := &closeAccounts{}

	row, err := s.entities.FindByTypeAndCode(ctx, organizationID, entity.TypeFiscalPeriod, period.Code())
	switch {
	case errors.Is(err, shared.ErrNotFound):
		report.Add(fiscal.IssuePeriodNotFound, fmt.Sprintf("Fiscal period %s has not been provisioned", period.Code()))
	case err != nil:
		return nil, nil, err
	default:
		accts.period = row
		if row.Status != entity.StatusOpen {
			report.Add(fiscal.IssuePeriodNotOpen, fmt.Sprintf("Fiscal period %s is %s, not open", period.Code(), row.Status))
		}
	}

	accts.currentYearEarnings, err = s.findAccount(ctx, organizationID, req.CurrentYearEarningsCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, nil, err
		}
		report.Add(fiscal.IssueMissingCYEAccount, fmt.Sprintf("No current-year-earnings account with code %q", req.CurrentYearEarningsCode))
	}
	accts.retainedEarnings, err = s.findAccount(ctx, organizationID, req.RetainedEarningsCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, nil, err
		}
		report.Add(fiscal.IssueMissingREAccount, fmt.Sprintf("No retained-earnings account with code %q", req.RetainedEarningsCode))
	}

	yearStart := time.Date(period.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	drafts, err := s.transactions.CountDraftInRange(ctx, organizationID, yearStart, period.End())
	if err != nil {
		return nil, nil, err
	}
	if drafts > 0 {
		report.Add(fiscal.IssueDraftTransactions, fmt.Sprintf("%d draft transactions are dated inside the fiscal year", drafts))
	}

	return report, accts, nil
}

func (s *CloseService) findAccount(ctx context.Context, organizationID uuid.UUID, code string) (*entity.Entity, error) {
	return s.entities.FindByTypeAndCode(ctx, organizationID, entity.TypeGLAccount, code)
}

// buildPreview sweeps the chart of accounts, classifies revenue and expense
// accounts, and batches their year-to-date balances as of the period end.
func (s *CloseService) buildPreview(ctx context.Context, organizationID uuid.UUID, period fiscal.Period, accts *closeAccounts) (*fiscal.ClosePreview, error) {
	accounts, err := s.entities.ListByType(ctx, organizationID, entity.TypeGLAccount)
	if err != nil {
		return nil, err
	}

	var revenueAccts, expenseAccts []entity.Entity
	ids := make([]uuid.UUID, 0, len(accounts))
	for _, a := range accounts {
		switch classifyAccount(a) {
		case classRevenue:
			revenueAccts = append(revenueAccts, a)
			ids = append(ids, a.ID)
		case classExpense:
			expenseAccts = append(expenseAccts, a)
			ids = append(ids, a.ID)
		}
	}

	balances, err := s.transactions.GetBalances(ctx, organizationID, ids, period.End())
	if err != nil {
		return nil, err
	}

	toBalances := func(accts []entity.Entity) []fiscal.AccountBalance {
		out := make([]fiscal.AccountBalance, 0, len(accts))
		for _, a := range accts {
			b, ok := balances[a.ID]
			if !ok {
				continue
			}
			out = append(out, fiscal.AccountBalance{
				AccountID:   a.ID,
				AccountCode: a.EntityCode,
				AccountName: a.EntityName,
				Balance:     b,
			})
		}
		return out
	}

	revenue := fiscal.FilterZeroBalances(toBalances(revenueAccts))
	expenses := fiscal.FilterZeroBalances(toBalances(expenseAccts))
	totalRevenue, totalExpenses, netIncome := fiscal.NetIncome(revenue, expenses)

	code := "CLOSE-" + period.Code()
	txn, _, err := fiscal.BuildClosingEntry(organizationID, code, period.End(),
		revenue, expenses, accts.currentYearEarnings.ID, accts.retainedEarnings.ID)
	if err != nil {
		return nil, err
	}

	return &fiscal.ClosePreview{
		Period:        period,
		PeriodCode:    period.Code(),
		CloseDate:     period.End(),
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  totalRevenue,
		TotalExpenses: totalExpenses,
		NetIncome:     netIncome,
		Lines:         txn.Lines,
	}, nil
}

// loserError maps the losing side of the status race to a stable error
func (s *CloseService) loserError(ctx context.Context, organizationID, periodID uuid.UUID) error {
	row, err := s.entities.FindByID(ctx, organizationID, periodID)
	if err != nil {
		return err
	}
	switch row.Status {
	case entity.StatusClosed:
		return shared.ErrPeriodAlreadyClosed
	case entity.StatusClosing:
		return shared.ErrClosePending
	default:
		return shared.ErrConcurrencyConflict
	}
}

// unlock reverts a failed close back to open so the period can be retried
func (s *CloseService) unlock(ctx context.Context, organizationID, periodID uuid.UUID) {
	if _, err := s.entities.UpdateStatusIf(ctx, organizationID, periodID, entity.StatusClosing, entity.StatusOpen); err != nil {
		s.logger.Error("failed to unlock fiscal period after close failure",
			zap.String("period_id", periodID.String()), zap.Error(err))
	}
}

// Account classification for the close sweep
type accountClass int

const (
	classOther accountClass = iota
	classRevenue
	classExpense
)

// classifyAccount decides whether a GL account participates in the close.
// The account_type metadata key wins when present; otherwise the smart-code
// segments are scanned for REVENUE/EXPENSE markers.
func classifyAccount(a entity.Entity) accountClass {
	if v, ok := a.Metadata["account_type"].(string); ok {
		switch strings.ToLower(v) {
		case "revenue", "income":
			return classRevenue
		case "expense":
			return classExpense
		default:
			return classOther
		}
	}

	parsed, err := smartcode.Parse(a.SmartCode)
	if err != nil {
		return classOther
	}
	for _, seg := range parsed.Segments {
		switch seg {
		case "REVENUE", "INCOME":
			return classRevenue
		case "EXPENSE", "EXPENSES", "COGS":
			return classExpense
		}
	}
	return classOther
}
