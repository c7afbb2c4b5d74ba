package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/linkshort/internal/ratelimit"
	"github.com/serroba/linkshort/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func TestLimiter_Allow(t *testing.T) {
	policy := ratelimit.Policy{
		ratelimit.ScopeGlobal: {{Window: time.Minute, Max: 5}},
		ratelimit.ScopeWrite:  {{Window: time.Minute, Max: 2}},
	}

	t.Run("allows requests under every limit", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemory(), policy)

		for range 2 {
			exceeded, err := limiter.Allow(context.Background(), "client", []ratelimit.Scope{
				ratelimit.ScopeGlobal, ratelimit.ScopeWrite,
			})

			require.NoError(t, err)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("reports the scope that was exceeded", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemory(), policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

		for range 2 {
			_, _ = limiter.Allow(context.Background(), "client", scopes)
		}

		exceeded, err := limiter.Allow(context.Background(), "client", scopes)

		require.NoError(t, err)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		assert.Equal(t, int64(3), exceeded.Count)
		assert.Equal(t, "write scope, 3/2 requests in 1m0s", exceeded.String())
	})

	t.Run("ignores scopes without limits", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemory(), policy)

		for range 10 {
			exceeded, err := limiter.Allow(context.Background(), "client", []ratelimit.Scope{ratelimit.ScopeRead})

			require.NoError(t, err)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemory(), policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeWrite}

		for range 3 {
			_, _ = limiter.Allow(context.Background(), "a", scopes)
		}

		exceeded, err := limiter.Allow(context.Background(), "b", scopes)

		require.NoError(t, err)
		assert.Nil(t, exceeded)
	})

	t.Run("wraps store errors", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(failingStore{}, policy)

		_, err := limiter.Allow(context.Background(), "client", []ratelimit.Scope{ratelimit.ScopeGlobal})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "store down")
	})
}

func TestLimiter_AllowLimits(t *testing.T) {
	t.Run("applies endpoint limits per route", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemory(), ratelimit.DefaultPolicy())
		limits := []ratelimit.Limit{{Window: time.Minute, Max: 1}}

		exceeded, err := limiter.AllowLimits(context.Background(), "client", "/shorten", limits)
		require.NoError(t, err)
		assert.Nil(t, exceeded)

		exceeded, err = limiter.AllowLimits(context.Background(), "client", "/shorten", limits)
		require.NoError(t, err)
		require.NotNil(t, exceeded)
		assert.Equal(t, "2/1 requests in 1m0s", exceeded.String())

		exceeded, err = limiter.AllowLimits(context.Background(), "client", "/expand", limits)
		require.NoError(t, err)
		assert.Nil(t, exceeded)
	})
}
