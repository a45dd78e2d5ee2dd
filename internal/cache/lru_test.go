package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	c.Set("a", "2")
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)

	assert.Equal(t, Stats{Size: 1, Hits: 2, Misses: 1}, c.Stats())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(30 * time.Second)
	c.Set("c", 3)

	now = now.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Stats().Size)

	c.Delete("c")
	assert.Equal(t, 0, c.Stats().Size)
}
