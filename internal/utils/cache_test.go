package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	c, err := NewTTLCache[string, string](10, time.Minute)
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("+1555", "user-1")
	v, ok := c.Get("+1555")
	assert.True(t, ok)
	assert.Equal(t, "user-1", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("+1555")
	assert.False(t, ok)
}

func TestTTLCacheEvictsAndDeletes(t *testing.T) {
	c, err := NewTTLCache[int, int](2, time.Hour)
	require.NoError(t, err)

	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)
	_, ok := c.Get(1)
	assert.False(t, ok, "oldest entry evicted")

	c.Delete(3)
	_, ok = c.Get(3)
	assert.False(t, ok)
}
