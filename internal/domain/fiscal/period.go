package fiscal

import (
	"fmt"
	"time"

	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/shared"
)

// PeriodStatus is the lifecycle of a fiscal period. Periods are entities of
// type "fiscal_period"; the status column carries the state. Closed is
// terminal.
type PeriodStatus string

const (
	PeriodOpen    PeriodStatus = PeriodStatus(entity.StatusOpen)
	PeriodClosing PeriodStatus = PeriodStatus(entity.StatusClosing)
	PeriodClosed  PeriodStatus = PeriodStatus(entity.StatusClosed)
)

// IsValid checks if the status is a known period status
func (s PeriodStatus) IsValid() bool {
	return s == PeriodOpen || s == PeriodClosing || s == PeriodClosed
}

// Period identifies one accounting month
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod builds a period, validating the month
func NewPeriod(year int, month int) (Period, error) {
	if year < 1900 || year > 9999 {
		return Period{}, shared.NewValidationError("INVALID_PERIOD", "Year out of range")
	}
	if month < 1 || month > 12 {
		return Period{}, shared.NewValidationError("INVALID_PERIOD", "Month must be 1-12")
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodForDate returns the period containing the given date
func PeriodForDate(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriodCode parses an entity code of the form "YYYY-MM"
func ParsePeriodCode(code string) (Period, error) {
	var year, month int
	if _, err := fmt.Sscanf(code, "%4d-%2d", &year, &month); err != nil {
		return Period{}, shared.NewValidationError("INVALID_PERIOD", fmt.Sprintf("Period code %q is not YYYY-MM", code))
	}
	return NewPeriod(year, month)
}

// Code returns the canonical entity code "YYYY-MM"
func (p Period) Code() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns the first instant of the period (UTC)
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the period (UTC)
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	u := t.UTC()
	return u.Year() == p.Year && u.Month() == p.Month
}

// Next returns the following period
func (p Period) Next() Period {
	s := p.Start().AddDate(0, 1, 0)
	return Period{Year: s.Year(), Month: s.Month()}
}
