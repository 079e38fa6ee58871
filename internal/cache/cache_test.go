package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("1", "content"), Key("1", "content"))
	assert.NotEqual(t, Key("1", "content"), Key("2", "content"))
	// Part boundaries matter: ("ab","c") and ("a","bc") are different keys.
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(), time.Minute)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", "v")
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	c.Delete(ctx, "k")
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestMemoryBackendExpiry(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	backend.Set(ctx, "k", "v", 10*time.Millisecond)
	_, ok := backend.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = backend.Get(ctx, "k")
	assert.False(t, ok)
}
