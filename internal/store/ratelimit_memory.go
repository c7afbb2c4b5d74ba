package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/linkshort/internal/ratelimit"
)

// sweepInterval is how often Record also drops keys whose window has fully elapsed.
const sweepInterval = time.Minute

type slidingWindow struct {
	hits []time.Time
	span time.Duration
}

// RateLimitMemory is an in-process sliding window store.
type RateLimitMemory struct {
	mu        sync.Mutex
	windows   map[string]*slidingWindow
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimitMemory creates an empty in-memory rate limit store.
func NewRateLimitMemory() *RateLimitMemory {
	return &RateLimitMemory{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

func (s *RateLimitMemory) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok {
		w = &slidingWindow{}
		s.windows[key] = w
	}

	w.span = window
	cutoff := now.Add(-window)

	// Timestamps are appended in order, so everything before the first live one is expired.
	first := len(w.hits)

	for i, ts := range w.hits {
		if ts.After(cutoff) {
			first = i

			break
		}
	}

	w.hits = append(w.hits[first:len(w.hits):len(w.hits)], now)

	return int64(len(w.hits)), nil
}

// sweep removes keys whose newest request is older than their window.
func (s *RateLimitMemory) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}

	s.lastSweep = now

	for key, w := range s.windows {
		if len(w.hits) == 0 || !w.hits[len(w.hits)-1].After(now.Add(-w.span)) {
			delete(s.windows, key)
		}
	}
}

var _ ratelimit.Store = (*RateLimitMemory)(nil)
