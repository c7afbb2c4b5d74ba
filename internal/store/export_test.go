package store

import "time"

func (s *RateLimitMemory) SetClock(now func() time.Time) {
	s.now = now
}

func (s *RateLimitMemory) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}
