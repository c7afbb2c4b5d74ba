package ratelimit

import (
	"context"
	"time"
)

// Store records requests per key inside a sliding window.
type Store interface {
	// Record adds a request for key and returns how many requests fall inside the window,
	// including this one. Expired entries are pruned.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
