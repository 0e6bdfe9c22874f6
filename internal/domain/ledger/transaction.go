package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the transaction lifecycle. Once posted, header and lines
// are immutable except for status/metadata annotations; corrections are new
// reversal transactions, never edits.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPosted   Status = "posted"
	StatusReversed Status = "reversed" // annotated after a reversal was posted
	StatusVoided   Status = "voided"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPosted, StatusReversed, StatusVoided:
		return true
	}
	return false
}

// Well-known transaction types. The discriminator is free text; these are
// the types the core itself emits or treats specially.
const (
	TypeJournalEntry = "journal_entry"
	TypeClosingEntry = "closing_entry"
	TypeSale         = "sale"
	TypeAppointment  = "appointment"
)

// ledgerBearing flags the transaction types whose lines must form a
// balanced double-entry set.
var ledgerBearing = map[string]bool{
	TypeJournalEntry: true,
	TypeClosingEntry: true,
}

// IsLedgerBearing reports whether the transaction type carries balanced
// debit/credit lines
func IsLedgerBearing(transactionType string) bool {
	return ledgerBearing[transactionType]
}

// Side is the debit/credit flag carried in a ledger line's metadata
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// IsValid checks if the side is debit or credit
func (s Side) IsValid() bool {
	return s == SideDebit || s == SideCredit
}

// sideMetadataKey is where the debit/credit split lives in line metadata
const sideMetadataKey = "side"

// Line is one itemized component of a transaction. LineAmount is a
// non-negative magnitude; the metadata side flag gives ledger lines their
// sign.
type Line struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	LineNumber    int
	LineEntityID  uuid.UUID
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	LineAmount    decimal.Decimal
	SmartCode     string
	Metadata      shared.JSONMap
}

// NewLine creates a plain (non-ledger) transaction line
func NewLine(lineNumber int, lineEntityID uuid.UUID, quantity, unitPrice, amount decimal.Decimal, smartCode string) Line {
	return Line{
		ID:           uuid.New(),
		LineNumber:   lineNumber,
		LineEntityID: lineEntityID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineAmount:   amount,
		SmartCode:    smartCode,
		Metadata:     shared.JSONMap{},
	}
}

// NewLedgerLine creates a debit- or credit-flagged line for journal and
// closing entries
func NewLedgerLine(lineNumber int, accountID uuid.UUID, side Side, amount decimal.Decimal, smartCode string) Line {
	l := NewLine(lineNumber, accountID, decimal.NewFromInt(1), amount, amount, smartCode)
	l.Metadata[sideMetadataKey] = string(side)
	return l
}

// Side returns the debit/credit flag, or empty for non-ledger lines
func (l Line) Side() Side {
	if v, ok := l.Metadata[sideMetadataKey].(string); ok {
		return Side(v)
	}
	return ""
}

// SignedAmount returns the line amount signed by side: debits positive,
// credits negative, side-less lines as-is.
func (l Line) SignedAmount() decimal.Decimal {
	switch l.Side() {
	case SideCredit:
		return l.LineAmount.Neg()
	default:
		return l.LineAmount
	}
}

// Transaction is a business event header plus its itemized lines: a sale, a
// journal entry, an appointment or a closing entry are all the same shape,
// distinguished by type and smart code.
type Transaction struct {
	shared.OrgAggregateRoot
	TransactionType string
	TransactionCode string
	TransactionDate time.Time
	SmartCode       string
	TotalAmount     decimal.Decimal
	FromEntityID    *uuid.UUID
	ToEntityID      *uuid.UUID
	Status          Status
	Metadata        shared.JSONMap
	ReversalOfID    *uuid.UUID
	Lines           []Line
}

// NewTransaction creates a draft transaction header
func NewTransaction(organizationID uuid.UUID, transactionType, transactionCode string, transactionDate time.Time, smartCode string, totalAmount decimal.Decimal) (*Transaction, error) {
	if organizationID == uuid.Nil {
		return nil, shared.ErrMissingOrganizationID
	}
	if transactionType == "" {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_TYPE", "Transaction type cannot be empty")
	}
	if transactionCode == "" {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_CODE", "Transaction code cannot be empty")
	}
	if transactionDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_DATE", "Transaction date is required")
	}
	if smartCode == "" {
		return nil, shared.NewValidationError(shared.ErrInvalidSmartCode.Code, "Smart code is required")
	}

	return &Transaction{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		TransactionType:  transactionType,
		TransactionCode:  transactionCode,
		TransactionDate:  transactionDate,
		SmartCode:        smartCode,
		TotalAmount:      totalAmount,
		Status:           StatusDraft,
		Metadata:         shared.JSONMap{},
		Lines:            make([]Line, 0),
	}, nil
}

// AddLine appends a line to a draft transaction
func (t *Transaction) AddLine(line Line) error {
	if t.Status != StatusDraft {
		return shared.ErrTransactionImmutable
	}
	line.TransactionID = t.ID
	t.Lines = append(t.Lines, line)
	return nil
}

// ValidateLines enforces the line invariants: strict ascending numbering
// from 1 with no gaps, and for ledger-bearing types a balanced debit/credit
// set whose debit total equals the header total (or nets to zero for
// closing journals, which is the same condition).
func (t *Transaction) ValidateLines() error {
	if len(t.Lines) == 0 {
		return shared.NewValidationError("EMPTY_TRANSACTION", "Transaction must have at least one line")
	}

	for i, line := range t.Lines {
		if line.LineNumber != i+1 {
			return shared.NewInvariantViolation(
				shared.ErrInvalidLineSequence.Code,
				fmt.Sprintf("Line %d has number %d, expected %d", i, line.LineNumber, i+1),
			)
		}
	}

	if !IsLedgerBearing(t.TransactionType) {
		return nil
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range t.Lines {
		// ledger lines are magnitudes; the side flag carries the sign
		if line.LineAmount.IsNegative() {
			return shared.NewValidationError("INVALID_LINE_AMOUNT", "Ledger line amounts cannot be negative")
		}
		switch line.Side() {
		case SideDebit:
			debits = debits.Add(line.LineAmount)
		case SideCredit:
			credits = credits.Add(line.LineAmount)
		default:
			return shared.NewInvariantViolation(
				shared.ErrUnbalancedEntry.Code,
				fmt.Sprintf("Ledger line %d is missing a debit/credit flag", line.LineNumber),
			)
		}
	}
	if !debits.Equal(credits) {
		return shared.NewInvariantViolation(
			shared.ErrUnbalancedEntry.Code,
			fmt.Sprintf("Debits %s do not equal credits %s", debits, credits),
		)
	}
	if !t.TotalAmount.IsZero() && !t.TotalAmount.Equal(debits) {
		return shared.NewInvariantViolation(
			shared.ErrUnbalancedEntry.Code,
			fmt.Sprintf("Header total %s does not match the posted side total %s", t.TotalAmount, debits),
		)
	}
	return nil
}

// Post validates the lines and transitions the transaction to posted
func (t *Transaction) Post() error {
	if t.Status != StatusDraft {
		return shared.ErrTransactionImmutable
	}
	if err := t.ValidateLines(); err != nil {
		return err
	}
	t.Status = StatusPosted
	t.Touch()
	return nil
}

// IsPosted reports whether the transaction has been durably posted
func (t *Transaction) IsPosted() bool {
	return t.Status == StatusPosted || t.Status == StatusReversed
}

// BuildReversal creates a new draft transaction that exactly offsets this
// one: same lines with debit and credit swapped (or amounts unchanged for
// non-ledger lines, which net through the signed-sum convention). The
// original is never edited.
func (t *Transaction) BuildReversal(reversalCode string, reversalDate time.Time) (*Transaction, error) {
	if !t.IsPosted() {
		return nil, shared.NewValidationError("INVALID_STATE", "Only posted transactions can be reversed")
	}
	if t.Status == StatusReversed {
		return nil, shared.NewConflictError("ALREADY_REVERSED", "Transaction has already been reversed")
	}

	rev, err := NewTransaction(t.OrganizationID, t.TransactionType, reversalCode, reversalDate, t.SmartCode, t.TotalAmount)
	if err != nil {
		return nil, err
	}
	rev.FromEntityID = t.ToEntityID
	rev.ToEntityID = t.FromEntityID
	rev.ReversalOfID = &t.ID
	rev.Metadata["reversal_of_code"] = t.TransactionCode

	for _, line := range t.Lines {
		mirrored := Line{
			ID:           uuid.New(),
			LineNumber:   line.LineNumber,
			LineEntityID: line.LineEntityID,
			Quantity:     line.Quantity.Neg(),
			UnitPrice:    line.UnitPrice,
			LineAmount:   line.LineAmount,
			SmartCode:    line.SmartCode,
			Metadata:     line.Metadata.Copy(),
		}
		switch line.Side() {
		case SideDebit:
			mirrored.Metadata[sideMetadataKey] = string(SideCredit)
		case SideCredit:
			mirrored.Metadata[sideMetadataKey] = string(SideDebit)
		default:
			// plain lines reverse by negating the amount itself
			mirrored.LineAmount = line.LineAmount.Neg()
		}
		if err := rev.AddLine(mirrored); err != nil {
			return nil, err
		}
	}

	return rev, nil
}

// MarkReversed annotates a posted transaction as reversed. Status and
// metadata are the only mutable parts of a posted transaction.
func (t *Transaction) MarkReversed(reversalID uuid.UUID) error {
	if t.Status != StatusPosted {
		return shared.NewValidationError("INVALID_STATE", "Only posted transactions can be marked reversed")
	}
	t.Status = StatusReversed
	t.Metadata["reversed_by"] = reversalID.String()
	t.Touch()
	return nil
}
