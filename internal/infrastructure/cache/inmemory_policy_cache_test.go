package cache

import (
	"context"
	"testing"
	"time"

	"github.com/hera/backend/internal/domain/smartcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls    int
	policies map[string]*smartcode.IndustryPolicy
}

func (p *countingProvider) FindIndustry(_ context.Context, industry string) (*smartcode.IndustryPolicy, error) {
	p.calls++
	return p.policies[industry], nil
}

func (p *countingProvider) ListIndustries(_ context.Context) ([]smartcode.IndustryPolicy, error) {
	out := make([]smartcode.IndustryPolicy, 0, len(p.policies))
	for _, policy := range p.policies {
		out = append(out, *policy)
	}
	return out, nil
}

func TestInMemoryPolicyCache(t *testing.T) {
	ctx := context.Background()
	rest := &smartcode.IndustryPolicy{Industry: "REST", MinVersion: 1, IsActive: true}

	t.Run("second read is served from the cache", func(t *testing.T) {
		source := &countingProvider{policies: map[string]*smartcode.IndustryPolicy{"REST": rest}}
		cache := NewInMemoryPolicyCache(source, time.Minute)

		first, err := cache.FindIndustry(ctx, "REST")
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := cache.FindIndustry(ctx, "REST")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, source.calls)
	})

	t.Run("unregistered industries are cached too", func(t *testing.T) {
		source := &countingProvider{policies: map[string]*smartcode.IndustryPolicy{}}
		cache := NewInMemoryPolicyCache(source, time.Minute)

		policy, err := cache.FindIndustry(ctx, "SPACE")
		require.NoError(t, err)
		assert.Nil(t, policy)

		_, err = cache.FindIndustry(ctx, "SPACE")
		require.NoError(t, err)
		assert.Equal(t, 1, source.calls)
	})

	t.Run("invalidate forces a reload", func(t *testing.T) {
		source := &countingProvider{policies: map[string]*smartcode.IndustryPolicy{"REST": rest}}
		cache := NewInMemoryPolicyCache(source, time.Minute)

		_, err := cache.FindIndustry(ctx, "REST")
		require.NoError(t, err)
		require.NoError(t, cache.Invalidate(ctx, "rest"))

		_, err = cache.FindIndustry(ctx, "REST")
		require.NoError(t, err)
		assert.Equal(t, 2, source.calls)
	})

	t.Run("expired entries are reloaded", func(t *testing.T) {
		source := &countingProvider{policies: map[string]*smartcode.IndustryPolicy{"REST": rest}}
		cache := NewInMemoryPolicyCache(source, time.Nanosecond)

		_, err := cache.FindIndustry(ctx, "REST")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		_, err = cache.FindIndustry(ctx, "REST")
		require.NoError(t, err)
		assert.Equal(t, 2, source.calls)
	})
}
