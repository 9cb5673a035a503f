package ratelimit

import (
	"context"
	"fmt"
	"time"

	"StockPull/pkg/cache"
)

// Limiter implements a fixed-window request counter on top of the cache.
type Limiter struct {
	cache  cache.Service
	limit  int64
	window time.Duration
}

func NewLimiter(c cache.Service, limit int64, window time.Duration) *Limiter {
	return &Limiter{cache: c, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether the request is
// within the window's budget. The first hit in a window starts its expiry.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.cache.Increment(ctx, "ratelimit:"+key)
	if err != nil {
		return false, fmt.Errorf("increment rate counter: %w", err)
	}

	if count == 1 {
		if _, err := l.cache.Expire(ctx, "ratelimit:"+key, l.window); err != nil {
			return false, fmt.Errorf("set rate window: %w", err)
		}
	}

	return count <= l.limit, nil
}
