package smartcode

import (
	"context"
	"fmt"
	"time"

	"github.com/hera/backend/internal/domain/shared"
)

// IndustryPolicy is one row of the versioned policy table the validator
// consults. New industries and modules are additive data, not code changes.
type IndustryPolicy struct {
	Industry   string    `json:"industry"`
	MinVersion int       `json:"min_version"`
	IsActive   bool      `json:"is_active"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PolicyProvider exposes the registered industry policies. Implementations
// may cache, but a stale read only ever delays an additive industry, never
// admits a structurally invalid code.
type PolicyProvider interface {
	FindIndustry(ctx context.Context, industry string) (*IndustryPolicy, error)
	ListIndustries(ctx context.Context) ([]IndustryPolicy, error)
}

// Checker validates smart codes against both the grammar and the registered
// industry policies. Every write path consults it.
type Checker struct {
	policies PolicyProvider
}

// NewChecker creates a policy-aware smart-code checker
func NewChecker(policies PolicyProvider) *Checker {
	return &Checker{policies: policies}
}

// Check parses the code and verifies its industry is registered and active.
func (c *Checker) Check(ctx context.Context, code string) (*ParsedCode, error) {
	parsed, err := Parse(code)
	if err != nil {
		return nil, err
	}

	policy, err := c.policies.FindIndustry(ctx, parsed.Industry)
	if err != nil {
		return nil, err
	}
	if policy == nil || !policy.IsActive {
		return nil, shared.NewValidationError(
			shared.ErrInvalidSmartCode.Code,
			fmt.Sprintf("Industry %q is not registered", parsed.Industry),
		)
	}
	if parsed.Version < policy.MinVersion {
		return nil, shared.NewValidationError(
			shared.ErrInvalidSmartCode.Code,
			fmt.Sprintf("Smart code version v%d is below the minimum v%d for industry %q",
				parsed.Version, policy.MinVersion, parsed.Industry),
		)
	}

	return parsed, nil
}
