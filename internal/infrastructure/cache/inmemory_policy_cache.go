package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hera/backend/internal/domain/smartcode"
)

type policyEntry struct {
	policy    *smartcode.IndustryPolicy // nil means not registered
	expiresAt time.Time
}

// InMemoryPolicyCache is a read-through policy cache local to one process.
// Suitable for single-instance deployments and tests; distributed
// deployments should use RedisPolicyCache so invalidation is shared.
type InMemoryPolicyCache struct {
	source  smartcode.PolicyProvider
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]policyEntry
}

// NewInMemoryPolicyCache creates a process-local policy cache
func NewInMemoryPolicyCache(source smartcode.PolicyProvider, ttl time.Duration) *InMemoryPolicyCache {
	if ttl <= 0 {
		ttl = defaultPolicyTTL
	}
	return &InMemoryPolicyCache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]policyEntry),
	}
}

// FindIndustry returns the policy for an industry, consulting the local
// cache before the backing store
func (c *InMemoryPolicyCache) FindIndustry(ctx context.Context, industry string) (*smartcode.IndustryPolicy, error) {
	key := strings.ToUpper(industry)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.policy, nil
	}

	policy, err := c.source.FindIndustry(ctx, industry)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = policyEntry{policy: policy, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return policy, nil
}

// ListIndustries always hits the backing store
func (c *InMemoryPolicyCache) ListIndustries(ctx context.Context) ([]smartcode.IndustryPolicy, error) {
	return c.source.ListIndustries(ctx)
}

// Invalidate drops the cached entry for an industry
func (c *InMemoryPolicyCache) Invalidate(_ context.Context, industry string) error {
	c.mu.Lock()
	delete(c.entries, strings.ToUpper(industry))
	c.mu.Unlock()
	return nil
}
