// Package chunkcache memoizes corpus chunks by chunk index with a fixed capacity.
package chunkcache

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/verte-zerg/pidigits/internal/model"
)

// ErrInvalidCapacity is returned for non-positive capacities.
var ErrInvalidCapacity = errors.New("cache capacity must be > 0")

// Policy names an eviction policy.
type Policy string

const (
	// PolicyFIFO evicts the first-inserted entry. Reads do not refresh entries.
	PolicyFIFO Policy = "fifo"
	// PolicyLRU evicts the least recently read or written entry.
	PolicyLRU Policy = "lru"
)

// ParsePolicy resolves a case-insensitive policy name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo", "":
		return PolicyFIFO, nil
	case "lru":
		return PolicyLRU, nil
	default:
		return "", fmt.Errorf("unknown cache policy %q (available: fifo, lru)", s)
	}
}

// Cache maps chunk index to chunk text. Implementations never hold more than
// their capacity and are safe for concurrent use.
type Cache interface {
	Get(index int) (string, bool)
	Put(index int, chunk string)
	Contains(index int) bool
	Clear()
	Len() int
	Capacity() int
	Stats() model.CacheStats
}

// New returns a cache using the given policy.
func New(policy Policy, capacity int) (Cache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	switch policy {
	case PolicyFIFO, "":
		return newFIFO(capacity), nil
	case PolicyLRU:
		return newLRU(capacity)
	default:
		return nil, fmt.Errorf("unknown cache policy %q", policy)
	}
}

type counters struct {
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func (c *counters) record(hit bool) {
	if hit {
		c.hits.Add(1)
		return
	}
	c.misses.Add(1)
}

func (c *counters) snapshot(length, capacity int) model.CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total) * 100.0
	}
	return model.CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		Len:       length,
		Capacity:  capacity,
		HitRatio:  ratio,
	}
}

func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
