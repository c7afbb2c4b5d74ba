//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/linkshort/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func TestRateLimitRedisIntegration(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: getRedisAddr()})

	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	s := store.NewRateLimitRedis(client)

	t.Run("counts requests inside the window", func(t *testing.T) {
		key := "it:" + uuid.NewString()

		for want := int64(1); want <= 3; want++ {
			count, err := s.Record(ctx, key, time.Minute)

			require.NoError(t, err)
			assert.Equal(t, want, count)
		}

		_ = client.Del(ctx, "ratelimit:"+key).Err()
	})

	t.Run("drops requests older than the window", func(t *testing.T) {
		key := "it:" + uuid.NewString()

		_, _ = s.Record(ctx, key, 100*time.Millisecond)
		time.Sleep(150 * time.Millisecond)

		count, err := s.Record(ctx, key, 100*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("sets an expiry on the key", func(t *testing.T) {
		key := "it:" + uuid.NewString()

		_, err := s.Record(ctx, key, time.Minute)
		require.NoError(t, err)

		ttl, err := client.PTTL(ctx, "ratelimit:"+key).Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)

		_ = client.Del(ctx, "ratelimit:"+key).Err()
	})
}
