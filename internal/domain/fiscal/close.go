package fiscal

import (
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Close-engine validation issue codes
const (
	IssuePeriodNotFound    = "PERIOD_NOT_FOUND"
	IssuePeriodNotOpen     = "PERIOD_NOT_OPEN"
	IssueMissingCYEAccount = "MISSING_CURRENT_YEAR_EARNINGS"
	IssueMissingREAccount  = "MISSING_RETAINED_EARNINGS"
	IssueDraftTransactions = "DRAFT_TRANSACTIONS_IN_PERIOD"
)

// ValidationIssue is one problem found during close validation. Issues are
// collected into a single report so callers see everything wrong at once.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationReport collects every issue found during the validating step
type ValidationReport struct {
	Issues []ValidationIssue `json:"issues"`
}

// Add appends an issue to the report
func (r *ValidationReport) Add(code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Code: code, Message: message})
}

// OK reports whether validation passed
func (r *ValidationReport) OK() bool {
	return len(r.Issues) == 0
}

// AccountBalance is one account's signed year-to-date balance
// (debits minus credits) as of the close date.
type AccountBalance struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance"`
}

// ClosePreview is the computed result of steps the engine runs before
// posting: aggregated balances, net income and the would-be closing lines.
type ClosePreview struct {
	Period        Period           `json:"-"`
	PeriodCode    string           `json:"period_code"`
	CloseDate     time.Time        `json:"close_date"`
	Revenue       []AccountBalance `json:"revenue"`
	Expenses      []AccountBalance `json:"expenses"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	TotalExpenses decimal.Decimal  `json:"total_expenses"`
	NetIncome     decimal.Decimal  `json:"net_income"`
	Lines         []ledger.Line    `json:"lines"`
}

// CloseResult is returned by a committed close
type CloseResult struct {
	Preview       ClosePreview `json:"preview"`
	TransactionID *uuid.UUID   `json:"transaction_id,omitempty"`
	ClosedAt      time.Time    `json:"closed_at"`
}

// FilterZeroBalances drops accounts whose year-to-date balance is exactly
// zero; they generate no closing line.
func FilterZeroBalances(accounts []AccountBalance) []AccountBalance {
	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		if !a.Balance.IsZero() {
			out = append(out, a)
		}
	}
	return out
}

// NetIncome computes total revenue, total expenses and net income from
// signed balances. Revenue accounts normally carry credit (negative signed)
// balances, expenses debit (positive signed) balances; contra balances flow
// through sign-aware.
func NetIncome(revenue, expenses []AccountBalance) (totalRevenue, totalExpenses, netIncome decimal.Decimal) {
	for _, a := range revenue {
		totalRevenue = totalRevenue.Sub(a.Balance)
	}
	for _, a := range expenses {
		totalExpenses = totalExpenses.Add(a.Balance)
	}
	netIncome = totalRevenue.Sub(totalExpenses)
	return
}

// zeroingLine builds the line that brings an account's signed balance to
// zero: credit a debit balance, debit a credit balance.
func zeroingLine(lineNumber int, account AccountBalance, smartCode string) ledger.Line {
	if account.Balance.IsPositive() {
		return ledger.NewLedgerLine(lineNumber, account.AccountID, ledger.SideCredit, account.Balance, smartCode)
	}
	return ledger.NewLedgerLine(lineNumber, account.AccountID, ledger.SideDebit, account.Balance.Abs(), smartCode)
}

// Smart codes stamped on generated closing entries
const (
	SmartCodeClosingEntry = "HERA.FIN.GL.TXN.CLOSING.YEAR_END.v1"
	SmartCodeClosingLine  = "HERA.FIN.GL.LINE.CLOSING.v1"
	SmartCodeEarningsLine = "HERA.FIN.GL.LINE.CLOSING.EARNINGS.v1"
	SmartCodeRetainedLine = "HERA.FIN.GL.LINE.CLOSING.RETAINED.v1"
)

// BuildClosingEntry assembles the balanced closing transaction: zeroing
// lines for every non-zero revenue and expense account, a net-income
// transfer to current-year-earnings, and the final roll into retained
// earnings. The groups net to zero by construction; ValidateLines is still
// run by the ledger before anything is written.
func BuildClosingEntry(
	organizationID uuid.UUID,
	transactionCode string,
	closeDate time.Time,
	revenue, expenses []AccountBalance,
	currentYearEarningsID, retainedEarningsID uuid.UUID,
) (*ledger.Transaction, decimal.Decimal, error) {
	revenue = FilterZeroBalances(revenue)
	expenses = FilterZeroBalances(expenses)
	_, _, netIncome := NetIncome(revenue, expenses)

	txn, err := ledger.NewTransaction(organizationID, ledger.TypeClosingEntry, transactionCode,
		closeDate, SmartCodeClosingEntry, decimal.Zero)
	if err != nil {
		return nil, decimal.Zero, err
	}

	lineNo := 0
	addLine := func(l ledger.Line) error {
		return txn.AddLine(l)
	}
	next := func() int {
		lineNo++
		return lineNo
	}

	for _, a := range revenue {
		if err := addLine(zeroingLine(next(), a, SmartCodeClosingLine)); err != nil {
			return nil, decimal.Zero, err
		}
	}
	for _, a := range expenses {
		if err := addLine(zeroingLine(next(), a, SmartCodeClosingLine)); err != nil {
			return nil, decimal.Zero, err
		}
	}

	if !netIncome.IsZero() {
		mag := netIncome.Abs()
		if netIncome.IsPositive() {
			// profit: park in current-year-earnings, then roll to retained
			err = addLine(ledger.NewLedgerLine(next(), currentYearEarningsID, ledger.SideCredit, mag, SmartCodeEarningsLine))
			if err == nil {
				err = addLine(ledger.NewLedgerLine(next(), currentYearEarningsID, ledger.SideDebit, mag, SmartCodeEarningsLine))
			}
			if err == nil {
				err = addLine(ledger.NewLedgerLine(next(), retainedEarningsID, ledger.SideCredit, mag, SmartCodeRetainedLine))
			}
		} else {
			// loss: the mirror image
			err = addLine(ledger.NewLedgerLine(next(), currentYearEarningsID, ledger.SideDebit, mag, SmartCodeEarningsLine))
			if err == nil {
				err = addLine(ledger.NewLedgerLine(next(), currentYearEarningsID, ledger.SideCredit, mag, SmartCodeEarningsLine))
			}
			if err == nil {
				err = addLine(ledger.NewLedgerLine(next(), retainedEarningsID, ledger.SideDebit, mag, SmartCodeRetainedLine))
			}
		}
		if err != nil {
			return nil, decimal.Zero, err
		}
	}

	// every balance already zero: nothing to post, the period just locks
	if len(txn.Lines) == 0 {
		return txn, netIncome, nil
	}

	if err := txn.ValidateLines(); err != nil {
		// the builder must never hand the ledger an unbalanced set
		return nil, decimal.Zero, shared.NewInvariantViolation(
			shared.ErrUnbalancedEntry.Code,
			"Generated closing entry does not balance: "+err.Error(),
		)
	}

	return txn, netIncome, nil
}
