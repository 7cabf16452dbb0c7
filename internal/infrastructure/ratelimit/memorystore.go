package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounterStore keeps counters in process. Suitable for a single
// instance or when Redis is disabled.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

// Increment bumps key, resetting it first when its expiry has passed.
func (s *MemoryCounterStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &memoryCounter{expiresAt: now.Add(ttl)}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}

// Sweep drops expired counters and returns how many were removed.
func (s *MemoryCounterStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, k)
			removed++
		}
	}
	return removed
}
