package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func newTestCache(t *testing.T, opts ...MemoryOption) (*MemoryCache, *time.Time) {
	t.Helper()
	opts = append(opts, WithMemoryCleanup(0))
	mc := NewMemoryCache(opts...)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	t.Cleanup(func() { _ = mc.Close() })
	return mc, &now
}

func TestMemoryCacheRoundTripsTypedValues(t *testing.T) {
	mc, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", entry{Name: "a", Score: 1.5}, time.Minute))

	var got entry
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, entry{Name: "a", Score: 1.5}, got)

	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc, now := newTestCache(t)
	ctx := context.Background()

	var got entry
	assert.ErrorIs(t, mc.Get(ctx, "missing", &got), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", entry{Name: "a"}, time.Second))
	*now = now.Add(2 * time.Second)
	assert.ErrorIs(t, mc.Get(ctx, "k", &got), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc, now := newTestCache(t, WithMemoryMaxSize(2))
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Hour))
	*now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Hour))
	*now = now.Add(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v)) // a is now the most recent
	*now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Hour))

	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, mc.Len())
}

func TestMemoryCacheDelete(t *testing.T) {
	mc, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "x", 0))
	require.NoError(t, mc.Delete(ctx, "a", "unknown"))

	ok, err := mc.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashKeyIsStable(t *testing.T) {
	assert.Equal(t, HashKey("abc"), HashKey("abc"))
	assert.NotEqual(t, HashKey("abc"), HashKey("abd"))
	assert.Len(t, HashKey("abc"), 64)
	assert.Equal(t, "loan:1:x", GenerateKey("loan", 1, "x"))
}
