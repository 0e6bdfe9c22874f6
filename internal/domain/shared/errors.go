package shared

// ErrorKind classifies domain errors into the recovery categories callers
// dispatch on.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION" // recoverable, rejected before any write
	KindConflict   ErrorKind = "CONFLICT"   // caller decides retry/ignore
	KindInvariant  ErrorKind = "INVARIANT"  // rejected pre-write, never partially applied
	KindDependency ErrorKind = "DEPENDENCY" // caller must resolve references first
	KindStore      ErrorKind = "STORE"      // backing store failure
)

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewConflictError creates a conflict error
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewInvariantViolation creates an invariant-violation error
func NewInvariantViolation(code, message string) *DomainError {
	return NewDomainError(KindInvariant, code, message)
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError(KindValidation, "NOT_FOUND", "Resource not found")
	ErrInvalidInput          = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidSmartCode      = NewDomainError(KindValidation, "INVALID_SMART_CODE", "Smart code does not match the HERA grammar")
	ErrFieldTypeMismatch     = NewDomainError(KindValidation, "FIELD_TYPE_MISMATCH", "Value does not match the declared field type")
	ErrDuplicateEntityCode   = NewDomainError(KindConflict, "DUPLICATE_ENTITY_CODE", "Entity code already exists for this organization and type")
	ErrPeriodAlreadyClosed   = NewDomainError(KindConflict, "PERIOD_ALREADY_CLOSED", "Fiscal period is already closed")
	ErrClosePending          = NewDomainError(KindConflict, "CLOSE_PENDING", "Fiscal period close is already in progress")
	ErrPeriodClosed          = NewDomainError(KindInvariant, "PERIOD_CLOSED", "Fiscal period is closed for posting")
	ErrUnbalancedEntry       = NewDomainError(KindInvariant, "UNBALANCED_ENTRY", "Debit and credit totals do not balance")
	ErrInvalidLineSequence   = NewDomainError(KindInvariant, "INVALID_LINE_SEQUENCE", "Line numbers must ascend from 1 with no gaps")
	ErrCrossTenantReference  = NewDomainError(KindInvariant, "CROSS_TENANT_RELATIONSHIP", "Both endpoints must belong to the same organization")
	ErrTransactionImmutable  = NewDomainError(KindInvariant, "TRANSACTION_IMMUTABLE", "Posted transactions cannot be modified")
	ErrEntityInUse           = NewDomainError(KindDependency, "ENTITY_IN_USE", "Entity is still referenced by relationships or transaction lines")
	ErrStoreFailure          = NewDomainError(KindStore, "STORE_FAILURE", "Backing store request failed")
	ErrConcurrencyConflict   = NewDomainError(KindConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrOrganizationMismatch  = NewDomainError(KindValidation, "ORGANIZATION_MISMATCH", "Record does not belong to the requested organization")
	ErrMissingOrganizationID = NewDomainError(KindValidation, "MISSING_ORGANIZATION_ID", "Organization ID is required")
)
