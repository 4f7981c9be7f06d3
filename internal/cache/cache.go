// Package cache provides the ID-keyed object caches owned by a client.
// Entries never expire; staleness is the caller's responsibility and an
// entry is removed only by explicit invalidation or a full clear.
package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats are the running counters of one cache.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// HitRate returns hits / (hits + misses), 0 when nothing was looked up yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a generic ID-keyed store with hit/miss accounting. Lookups count
// as hits or misses so cache effectiveness is observable without separate
// instrumentation.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
	hits    uint64
	misses  uint64

	name  string
	total *prometheus.CounterVec // labels: cache, result ("hit"/"miss")
}

// New creates a cache. total is an optional counter vec with labels
// (cache, result); nil disables metric export.
func New[T any](name string, total *prometheus.CounterVec) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]T),
		name:    name,
		total:   total,
	}
}

func (c *Cache[T]) inc(result string) {
	if c.total != nil {
		c.total.WithLabelValues(c.name, result).Inc()
	}
}

// Get looks up an entry, counting the hit or miss.
func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[id]
	if ok {
		c.hits++
		c.inc("hit")
	} else {
		c.misses++
		c.inc("miss")
	}
	return v, ok
}

// Set stores or overwrites an entry.
func (c *Cache[T]) Set(id string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = value
}

// Invalidate removes one entry.
func (c *Cache[T]) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Clear removes every entry. Counters keep their values.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]T)
}

// All returns every cached value in unspecified order.
func (c *Cache[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.entries))
	for _, v := range c.entries {
		out = append(out, v)
	}
	return out
}

// Stats returns the running counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
}
