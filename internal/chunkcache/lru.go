package chunkcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/verte-zerg/pidigits/internal/model"
)

// lruCache refreshes recency on Get and Put.
type lruCache struct {
	capacity int
	stats    counters
	inner    *lru.Cache[int, string]
}

func newLRU(capacity int) (*lruCache, error) {
	c := &lruCache{capacity: capacity}
	inner, err := lru.NewWithEvict[int, string](capacity, func(int, string) {
		c.stats.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.inner = inner
	return c, nil
}

func (c *lruCache) Get(index int) (string, bool) {
	chunk, ok := c.inner.Get(index)
	c.stats.record(ok)
	return chunk, ok
}

func (c *lruCache) Put(index int, chunk string) {
	c.inner.Add(index, chunk)
}

func (c *lruCache) Contains(index int) bool {
	return c.inner.Contains(index)
}

func (c *lruCache) Clear() {
	c.inner.Purge()
	c.stats.reset()
}

func (c *lruCache) Len() int { return c.inner.Len() }

func (c *lruCache) Capacity() int { return c.capacity }

func (c *lruCache) Stats() model.CacheStats {
	return c.stats.snapshot(c.inner.Len(), c.capacity)
}
