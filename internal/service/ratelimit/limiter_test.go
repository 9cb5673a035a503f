package ratelimit

import (
	"context"
	"testing"
	"time"

	"StockPull/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(cache.NewMemoryCache(), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4_key")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be allowed", i+1)
	}

	ok, err := l.Allow(ctx, "1.2.3.4_key")
	require.NoError(t, err)
	assert.False(t, ok, "fourth request should be rejected")
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := NewLimiter(cache.NewMemoryCache(), 1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "1.2.3.4_key")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "5.6.7.8_key")
	require.NoError(t, err)
	assert.True(t, ok, "a different client has its own window")

	ok, err = l.Allow(ctx, "1.2.3.4_key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllowWindowResets(t *testing.T) {
	l := NewLimiter(cache.NewMemoryCache(), 1, 10*time.Millisecond)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "1.2.3.4_key")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "1.2.3.4_key")
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(20 * time.Millisecond)

	ok, err = l.Allow(ctx, "1.2.3.4_key")
	require.NoError(t, err)
	assert.True(t, ok, "a new window starts after expiry")
}
