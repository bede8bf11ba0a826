// Package ratelimit bounds per-client request rates with a fixed-window
// counter. The window storage is pluggable: an in-process map for
// single-instance deployments or a shared database table when several
// replicas must agree on one quota.
package ratelimit

import (
	"context"
	"time"

	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

// Store persists per-client window counters. Incr must atomically
// increment the counter of key within the window starting at
// windowStart, resetting it when the window changed, and return the new
// count. Concurrent calls for the same key must be linearized.
type Store interface {
	Incr(ctx context.Context, key string, windowStart time.Time) (int, error)
}

// Limiter admits up to quota requests per client per window.
type Limiter struct {
	store  Store
	quota  int
	window time.Duration
	l      logger.Interface
}

func New(store Store, quota int, window time.Duration, l logger.Interface) *Limiter {
	return &Limiter{store: store, quota: quota, window: window, l: l}
}

// Allow reports whether the client identified by clientKey may proceed.
// A store failure admits the request: rejecting all traffic because the
// counter backend hiccupped would turn the limiter into an outage.
func (l *Limiter) Allow(ctx context.Context, clientKey string) bool {
	windowStart := time.Now().Truncate(l.window)

	count, err := l.store.Incr(ctx, clientKey, windowStart)
	if err != nil {
		l.l.Error("rate limit store: %s", err)
		return true
	}

	return count <= l.quota
}
