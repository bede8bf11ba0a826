package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

func TestMemoryStoreIncr(t *testing.T) {
	store := NewMemoryStore()
	window := time.Now().Truncate(time.Minute)

	for want := 1; want <= 3; want++ {
		count, err := store.Incr(context.Background(), "client", window)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	// A new window resets the counter.
	count, err := store.Incr(context.Background(), "client", window.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStoreIsolatesKeys(t *testing.T) {
	store := NewMemoryStore()
	window := time.Now().Truncate(time.Minute)

	_, err := store.Incr(context.Background(), "a", window)
	require.NoError(t, err)

	count, err := store.Incr(context.Background(), "b", window)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLimiterQuota(t *testing.T) {
	limiter := New(NewMemoryStore(), 3, time.Minute, logger.New("error"))

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(context.Background(), "client"))
	}
	assert.False(t, limiter.Allow(context.Background(), "client"))

	// Another client still has its full quota.
	assert.True(t, limiter.Allow(context.Background(), "other"))
}

func TestLimiterConcurrentAdmitsExactlyQuota(t *testing.T) {
	const quota = 5
	limiter := New(NewMemoryStore(), quota, time.Minute, logger.New("error"))

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(context.Background(), "client") {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(quota), admitted)
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Time) (int, error) {
	return 0, errors.New("store down")
}

func TestLimiterFailsOpen(t *testing.T) {
	limiter := New(failingStore{}, 1, time.Minute, logger.New("error"))

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(context.Background(), "client"))
	}
}
