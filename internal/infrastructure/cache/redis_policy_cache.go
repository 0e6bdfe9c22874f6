package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hera/backend/internal/domain/smartcode"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPolicyTTL = 5 * time.Minute

// notRegisteredSentinel is cached for industries the store does not know,
// so repeated probes with bad codes do not hammer the database
const notRegisteredSentinel = "__not_registered__"

// RedisPolicyCache is a read-through cache in front of a
// smartcode.PolicyProvider. Policies change rarely and a stale read only
// delays an additive industry, so a short TTL is the whole invalidation
// story.
type RedisPolicyCache struct {
	client    *redis.Client
	source    smartcode.PolicyProvider
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// RedisPolicyCacheOption is a functional option for configuring the cache
type RedisPolicyCacheOption func(*RedisPolicyCache)

// WithPolicyTTL sets the cache entry lifetime
func WithPolicyTTL(ttl time.Duration) RedisPolicyCacheOption {
	return func(c *RedisPolicyCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPolicyLogger sets the logger for the cache
func WithPolicyLogger(logger *zap.Logger) RedisPolicyCacheOption {
	return func(c *RedisPolicyCache) {
		c.logger = logger
	}
}

// NewRedisPolicyCache creates a read-through policy cache on an existing
// Redis client
func NewRedisPolicyCache(client *redis.Client, source smartcode.PolicyProvider, opts ...RedisPolicyCacheOption) *RedisPolicyCache {
	c := &RedisPolicyCache{
		client:    client,
		source:    source,
		ttl:       defaultPolicyTTL,
		keyPrefix: "smartcode:policy:",
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindIndustry returns the policy for an industry, consulting Redis before
// the backing store. Cache failures degrade to the store, never to an error.
func (c *RedisPolicyCache) FindIndustry(ctx context.Context, industry string) (*smartcode.IndustryPolicy, error) {
	key := c.keyPrefix + strings.ToUpper(industry)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if cached == notRegisteredSentinel {
			return nil, nil
		}
		var policy smartcode.IndustryPolicy
		if err := json.Unmarshal([]byte(cached), &policy); err == nil {
			return &policy, nil
		}
		c.logger.Warn("corrupt policy cache entry, falling through", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("policy cache read failed, falling through", zap.Error(err))
	}

	policy, err := c.source.FindIndustry(ctx, industry)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, policy)
	return policy, nil
}

// ListIndustries always hits the backing store; the listing is an admin
// surface, not a hot path
func (c *RedisPolicyCache) ListIndustries(ctx context.Context) ([]smartcode.IndustryPolicy, error) {
	return c.source.ListIndustries(ctx)
}

// Invalidate drops the cached entry for an industry after an admin update
func (c *RedisPolicyCache) Invalidate(ctx context.Context, industry string) error {
	key := c.keyPrefix + strings.ToUpper(industry)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate policy cache entry: %w", err)
	}
	return nil
}

func (c *RedisPolicyCache) store(ctx context.Context, key string, policy *smartcode.IndustryPolicy) {
	payload := notRegisteredSentinel
	if policy != nil {
		encoded, err := json.Marshal(policy)
		if err != nil {
			return
		}
		payload = string(encoded)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("policy cache write failed", zap.Error(err))
	}
}
