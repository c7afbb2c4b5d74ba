package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limit allows at most Max requests per Window.
type Limit struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits that apply to them.
type Policy map[Scope][]Limit

// DefaultPolicy is applied to endpoints without their own limits.
func DefaultPolicy() Policy {
	return Policy{
		ScopeGlobal: {{Window: time.Minute, Max: 600}},
		ScopeRead:   {{Window: time.Minute, Max: 300}},
		ScopeWrite:  {{Window: time.Minute, Max: 30}, {Window: time.Hour, Max: 500}},
	}
}

// Exceeded describes the limit a request ran into.
type Exceeded struct {
	Scope Scope
	Limit Limit
	Count int64
}

func (e *Exceeded) String() string {
	if e.Scope == "" {
		return fmt.Sprintf("%d/%d requests in %s", e.Count, e.Limit.Max, e.Limit.Window)
	}

	return fmt.Sprintf("%s scope, %d/%d requests in %s", e.Scope, e.Count, e.Limit.Max, e.Limit.Window)
}

// Limiter enforces a Policy against a Store.
type Limiter struct {
	store  Store
	policy Policy
}

// NewLimiter creates a policy-based limiter.
func NewLimiter(store Store, policy Policy) *Limiter {
	return &Limiter{store: store, policy: policy}
}

// Allow records the request under every applicable scope and returns the first limit exceeded,
// or nil when the request may proceed.
func (l *Limiter) Allow(ctx context.Context, client string, scopes []Scope) (*Exceeded, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy[scope] {
			key := fmt.Sprintf("%s:%s:%d", client, scope, limit.Window.Milliseconds())

			exceeded, err := l.check(ctx, key, limit)
			if err != nil {
				return nil, err
			}

			if exceeded != nil {
				exceeded.Scope = scope

				return exceeded, nil
			}
		}
	}

	return nil, nil
}

// AllowLimits applies endpoint-specific limits instead of the policy. route keeps
// counters for different endpoints apart.
func (l *Limiter) AllowLimits(ctx context.Context, client, route string, limits []Limit) (*Exceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:route:%s:%d", client, route, limit.Window.Milliseconds())

		exceeded, err := l.check(ctx, key, limit)
		if err != nil || exceeded != nil {
			return exceeded, err
		}
	}

	return nil, nil
}

func (l *Limiter) check(ctx context.Context, key string, limit Limit) (*Exceeded, error) {
	count, err := l.store.Record(ctx, key, limit.Window)
	if err != nil {
		return nil, fmt.Errorf("record request: %w", err)
	}

	if count > limit.Max {
		return &Exceeded{Limit: limit, Count: count}, nil
	}

	return nil, nil
}
