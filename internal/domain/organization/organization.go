package organization

import (
	"context"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/shared/valueobject"
)

// Status represents the organization lifecycle state. Organizations are
// never hard-deleted, only suspended.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusSuspended
}

// Settings holds per-organization configuration
type Settings struct {
	Currency             valueobject.Currency `json:"currency"`
	FiscalYearStartMonth int                  `json:"fiscal_year_start_month"` // 1-12
}

// Organization is the tenancy root. Every other record carries exactly one
// organization ID; nothing is readable or writable across organizations.
type Organization struct {
	shared.BaseAggregateRoot
	Name     string
	Status   Status
	Settings Settings
}

// New creates an organization with defaulted settings
func New(name string, settings Settings) (*Organization, error) {
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Organization name cannot be empty")
	}
	if settings.Currency == "" {
		settings.Currency = valueobject.DefaultCurrency
	}
	if settings.FiscalYearStartMonth == 0 {
		settings.FiscalYearStartMonth = 1
	}
	if settings.FiscalYearStartMonth < 1 || settings.FiscalYearStartMonth > 12 {
		return nil, shared.NewValidationError("INVALID_FISCAL_YEAR_START", "Fiscal year start month must be 1-12")
	}

	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Status:            StatusActive,
		Settings:          settings,
	}, nil
}

// Suspend soft-disables the organization
func (o *Organization) Suspend() {
	o.Status = StatusSuspended
	o.Touch()
}

// IsActive reports whether the organization accepts writes
func (o *Organization) IsActive() bool {
	return o.Status == StatusActive
}

// Repository persists organizations
type Repository interface {
	Save(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
}
