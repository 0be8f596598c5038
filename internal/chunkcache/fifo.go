package chunkcache

import (
	"sync"

	"github.com/verte-zerg/pidigits/internal/model"
)

// fifoCache evicts in insertion order. Overwriting an existing index keeps its
// original position and never evicts.
type fifoCache struct {
	capacity int
	stats    counters

	mu      sync.Mutex
	entries map[int]string
	order   []int
}

func newFIFO(capacity int) *fifoCache {
	return &fifoCache{
		capacity: capacity,
		entries:  make(map[int]string, capacity),
		order:    make([]int, 0, capacity),
	}
}

func (c *fifoCache) Get(index int) (string, bool) {
	c.mu.Lock()
	chunk, ok := c.entries[index]
	c.mu.Unlock()
	c.stats.record(ok)
	return chunk, ok
}

func (c *fifoCache) Put(index int, chunk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[index]; ok {
		c.entries[index] = chunk
		return
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.stats.evictions.Add(1)
	}
	c.entries[index] = chunk
	c.order = append(c.order, index)
}

func (c *fifoCache) Contains(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[index]
	return ok
}

func (c *fifoCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]string, c.capacity)
	c.order = c.order[:0]
	c.stats.reset()
}

func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *fifoCache) Capacity() int { return c.capacity }

func (c *fifoCache) Stats() model.CacheStats {
	return c.stats.snapshot(c.Len(), c.capacity)
}
