package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval controls how often stale buckets are purged.
const sweepInterval = 256

type bucket struct {
	windowStart time.Time
	count       int
}

// MemoryStore is the in-process Store used by single-instance
// deployments. A mutex linearizes increments so that two concurrent
// requests can never both claim the last slot.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	calls   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket)}
}

func (s *MemoryStore) Incr(_ context.Context, key string, windowStart time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || !b.windowStart.Equal(windowStart) {
		b = &bucket{windowStart: windowStart}
		s.buckets[key] = b
	}
	b.count++

	s.calls++
	if s.calls%sweepInterval == 0 {
		s.sweep(windowStart)
	}

	return b.count, nil
}

// sweep drops buckets from expired windows. Callers hold the mutex.
func (s *MemoryStore) sweep(current time.Time) {
	for key, b := range s.buckets {
		if b.windowStart.Before(current) {
			delete(s.buckets, key)
		}
	}
}
