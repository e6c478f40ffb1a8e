package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestCacheBytesRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetBytes(ctx, "missing")
	assert.False(t, ok)

	c.SetBytes(ctx, "page", []byte(`{"n":1}`), 20*time.Second)
	got, ok := c.GetBytes(ctx, "page")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"n":1}`), got)

	mr.FastForward(21 * time.Second)
	_, ok = c.GetBytes(ctx, "page")
	assert.False(t, ok, "entry must expire with its TTL")
}

func TestCacheAside(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			dest.Name = "loaded"
			return nil
		}
	}

	var first payload
	require.NoError(t, c.Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, "loaded", first.Name)
	assert.Equal(t, 1, calls)

	// Second read is served from Redis without fetching.
	var second payload
	require.NoError(t, c.Aside(ctx, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, "loaded", second.Name)
	assert.Equal(t, 1, calls)

	c.Invalidate(ctx, "k")
	var third payload
	require.NoError(t, c.Aside(ctx, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestNilCacheIsSafe(t *testing.T) {
	ctx := context.Background()

	var c *Cache
	_, ok := c.GetBytes(ctx, "k")
	assert.False(t, ok)
	c.SetBytes(ctx, "k", []byte("v"), time.Minute)
	c.Invalidate(ctx, "k")

	// A Cache over a nil client behaves as a permanent miss.
	empty := New(nil)
	_, ok = empty.GetBytes(ctx, "k")
	assert.False(t, ok)

	var dest struct{ N int }
	err := empty.Aside(ctx, "k", &dest, time.Minute, func() error {
		dest.N = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, dest.N)
}
