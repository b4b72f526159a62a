package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewRunCache(time.Minute)
	c.now = func() time.Time { return now }

	run := c.Put(nil, nil)
	require.NotEmpty(t, run.ID)

	got, ok := c.Get(run.ID)
	require.True(t, ok)
	require.Same(t, run, got)

	_, ok = c.Get("unknown")
	require.False(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(run.ID)
	require.False(t, ok)
	require.Equal(t, 1, c.Len())
	require.Equal(t, 1, c.Evict())
	require.Zero(t, c.Len())
}

func TestNewRunCacheFromEnv(t *testing.T) {
	t.Setenv("RUN_CACHE_TTL", "90s")
	require.Equal(t, 90*time.Second, NewRunCacheFromEnv().ttl)

	t.Setenv("RUN_CACHE_TTL", "soon")
	require.Equal(t, DefaultRunTTL, NewRunCacheFromEnv().ttl)
}
