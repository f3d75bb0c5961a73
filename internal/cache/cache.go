// Package cache provides a process-wide cache of computed query results.
// Every entry is tagged with one or more bust conditions; firing a
// condition drops all entries tagged with it. Invalidation is coarse on
// purpose: correctness over precision.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// BustCondition is a named event class used to bulk-discard entries.
type BustCondition string

const (
	AnyPackageUpdated BustCondition = "any_package_updated"
	AnyTargetUpdated  BustCondition = "any_target_updated"
)

// Cache is safe for concurrent use. A nil *Cache is valid and behaves as
// an always-miss cache, so callers degrade to recomputing on every
// request instead of failing.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache
	byCond  map[BustCondition]map[string]struct{}
	tags    map[string][]BustCondition
}

func New(size int) (*Cache, error) {
	c := &Cache{
		byCond: make(map[BustCondition]map[string]struct{}),
		tags:   make(map[string][]BustCondition),
	}
	// The eviction callback runs synchronously from Add/Remove while
	// c.mu is already held, so it must not lock.
	entries, err := lru.NewWithEvict(size, func(key, _ interface{}) {
		c.dropTags(key.(string))
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(key)
}

// Set stores value under key, tagged with the given bust conditions.
func (c *Cache) Set(key string, value interface{}, conds ...BustCondition) {
	if c == nil || len(conds) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropTags(key)
	c.entries.Add(key, value)
	c.tags[key] = conds
	for _, cond := range conds {
		set, ok := c.byCond[cond]
		if !ok {
			set = make(map[string]struct{})
			c.byCond[cond] = set
		}
		set[key] = struct{}{}
	}
}

// Invalidate discards every entry tagged with cond.
func (c *Cache) Invalidate(cond BustCondition) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.byCond[cond] {
		c.entries.Remove(key)
	}
	delete(c.byCond, cond)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *Cache) dropTags(key string) {
	for _, cond := range c.tags[key] {
		if set, ok := c.byCond[cond]; ok {
			delete(set, key)
		}
	}
	delete(c.tags, key)
}
