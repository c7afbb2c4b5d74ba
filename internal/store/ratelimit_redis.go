package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/linkshort/internal/ratelimit"
)

// RateLimitRedis keeps one sorted set per key, scored by request time in milliseconds,
// so every server instance sharing the Redis sees the same windows.
type RateLimitRedis struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRateLimitRedis creates a Redis-backed rate limit store.
func NewRateLimitRedis(client redis.Cmdable) *RateLimitRedis {
	return &RateLimitRedis{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

func (r *RateLimitRedis) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := r.now()
	redisKey := r.prefix + key
	cutoff := now.Add(-window).UnixMilli()

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	count := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record %s: %w", key, err)
	}

	return count.Val(), nil
}

var _ ratelimit.Store = (*RateLimitRedis)(nil)
