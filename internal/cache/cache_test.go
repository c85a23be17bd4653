package cache_test

import (
	"testing"
	"time"

	"github.com/dvalin/aurum/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTL_GetSet(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := cache.NewWithClock[string, int](time.Minute, func() time.Time { return now })

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 42)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTTL_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := cache.NewWithClock[string, string](time.Minute, func() time.Time { return now })

	c.Set("a", "fresh")

	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok, "still inside the TTL")

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "expired entries read as absent")
}

func TestTTL_SetResetsExpiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := cache.NewWithClock[string, int](time.Minute, func() time.Time { return now })

	c.Set("a", 1)
	now = now.Add(50 * time.Second)
	c.Set("a", 2)
	now = now.Add(50 * time.Second)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTTL_Purge(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := cache.NewWithClock[string, int](time.Minute, func() time.Time { return now })

	c.Set("old", 1)
	now = now.Add(2 * time.Minute)
	c.Set("new", 2)

	c.Purge()
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("new")
	assert.True(t, ok)
}

func TestTTL_Delete(t *testing.T) {
	c := cache.New[string, int](time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}
