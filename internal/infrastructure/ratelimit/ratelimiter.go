// Package ratelimit bounds request frequency per store token with a fixed
// window counter. A burst straddling a window boundary may briefly exceed the
// nominal rate.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultRequestsPerWindow = 60
	DefaultWindow            = 60 * time.Second

	keyPrefix = "licensegate:ratelimit:store"
)

// CounterStore increments a named counter and arms its expiry on first use.
// Increments must be atomic across concurrent callers.
type CounterStore interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// ErrRateLimited is matched by errors.Is on an *ExceededError.
var ErrRateLimited = errors.New("rate limit exceeded")

// ExceededError is returned when a store has used its budget for the window.
type ExceededError struct {
	RetryAfter time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *ExceededError) Is(target error) bool {
	return target == ErrRateLimited
}

// Limiter enforces limit requests per window for each store token.
type Limiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a limiter. Non-positive values fall back to 60 requests
// per 60 seconds.
func NewLimiter(store CounterStore, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultRequestsPerWindow
	}
	if window < time.Second {
		window = DefaultWindow
	}
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Window returns the window length, which is also the retry-after hint.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Limit returns the per-window request ceiling.
func (l *Limiter) Limit() int {
	return l.limit
}

// Check counts one request for storeToken. Denied requests still count, so
// a client hammering a closed window does not earn extra budget.
func (l *Limiter) Check(ctx context.Context, storeToken string) error {
	count, err := l.store.Increment(ctx, l.key(storeToken), l.window+time.Second)
	if err != nil {
		return fmt.Errorf("rate limit counter: %w", err)
	}
	if count > int64(l.limit) {
		return &ExceededError{RetryAfter: l.window}
	}
	return nil
}

// key namespaces the counter per store and per window bucket so a counter
// left without expiry cannot block later windows.
func (l *Limiter) key(storeToken string) string {
	bucket := l.now().Unix() / int64(l.window/time.Second)
	return fmt.Sprintf("%s:%s:%d", keyPrefix, storeToken, bucket)
}
