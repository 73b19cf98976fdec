package cacheutil

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok, "expired entry should not be returned")
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewRedis(client)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.Set(ctx, "k", "v", time.Minute))
	v, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)

	mr.FastForward(2 * time.Minute)
	_, ok, err = r.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}
