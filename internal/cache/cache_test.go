package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetInvalidate(t *testing.T) {
	c, err := New(16)
	require.NoError(t, err)

	c.Set("all..last-updated", []string{"a", "b"}, AnyPackageUpdated)
	c.Set("targets", []string{"t"}, AnyTargetUpdated)

	v, ok := c.Get("all..last-updated")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)

	c.Invalidate(AnyPackageUpdated)

	_, ok = c.Get("all..last-updated")
	assert.False(t, ok, "package-tagged entry must be dropped")
	_, ok = c.Get("targets")
	assert.True(t, ok, "target-tagged entry must survive a package bust")
}

func TestVaryingKeysDoNotCollide(t *testing.T) {
	c, err := New(16)
	require.NoError(t, err)

	c.Set("all.query.most-downloaded", 1, AnyPackageUpdated)
	c.Set("all.query.newest", 2, AnyPackageUpdated)
	c.Set("authorer-someone.query.newest", 3, AnyPackageUpdated)

	v, ok := c.Get("all.query.newest")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMultipleConditions(t *testing.T) {
	c, err := New(16)
	require.NoError(t, err)

	c.Set("k", "v", AnyPackageUpdated, AnyTargetUpdated)
	c.Invalidate(AnyTargetUpdated)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestNilCacheDegrades(t *testing.T) {
	var c *Cache
	_, ok := c.Get("anything")
	assert.False(t, ok)
	// must not panic
	c.Set("anything", 1, AnyPackageUpdated)
	c.Invalidate(AnyPackageUpdated)
	assert.Equal(t, 0, c.Len())
}

func TestEvictionCleansTags(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Set("a", 1, AnyPackageUpdated)
	c.Set("b", 2, AnyPackageUpdated)
	c.Set("c", 3, AnyPackageUpdated) // evicts "a"

	assert.Equal(t, 2, c.Len())
	// busting after eviction must not resurrect or panic
	c.Invalidate(AnyPackageUpdated)
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c, err := New(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, n, AnyPackageUpdated)
				c.Get(key)
				if j%25 == 0 {
					c.Invalidate(AnyPackageUpdated)
				}
			}
		}(i)
	}
	wg.Wait()
}
