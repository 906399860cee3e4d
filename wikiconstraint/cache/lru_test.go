package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetSet(t *testing.T) {
	c := New[string, int](2)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 2) // overflow: "a" is least recently used

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRUGetTouchesToMostRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	_, ok := c.Get("a") // touch a: now b is LRU
	require.True(t, ok)

	c.Set("c", 3) // overflow: b should be evicted, not a

	_, ok = c.Get("a")
	assert.True(t, ok, "a was touched and should survive")
	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUSetExistingKeyTouches(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // re-set a: touches it to MRU

	c.Set("c", 3) // overflow: b should be evicted

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestLRUStats(t *testing.T) {
	c := New[string, int](1)
	c.Set("a", 1)

	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUNonPositiveCapacityTreatedAsOne(t *testing.T) {
	c := New[string, int](0)
	c.Set("a", 1)
	c.Set("b", 2)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
