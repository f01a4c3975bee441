// Package nearcache keeps a small in-process copy of hot region entries
// so repeated reads skip the network round trip.
package nearcache

import (
	"sync/atomic"
	"time"

	"github.com/maypok86/otter/v2"
)

const defaultMaximumSize = 10_000

// entryKey scopes a cached key to the generation it was written under.
// Advancing the generation makes every older entry unreachable at once.
type entryKey[K comparable] struct {
	gen uint64
	key K
}

type Cache[K comparable, V any] struct {
	cache *otter.Cache[entryKey[K], V]
	gen   atomic.Uint64
}

// New builds a near cache capped at maximumSize entries. Entries expire
// ttl after their last access; a non-positive ttl keeps them until evicted
// by size pressure. A non-positive maximumSize falls back to a default cap.
func New[K comparable, V any](ttl time.Duration, maximumSize int) *Cache[K, V] {
	if maximumSize <= 0 {
		maximumSize = defaultMaximumSize
	}

	opts := &otter.Options[entryKey[K], V]{
		MaximumSize: maximumSize,
	}
	if ttl > 0 {
		opts.ExpiryCalculator = otter.ExpiryAccessing[entryKey[K], V](ttl)
	}

	return &Cache[K, V]{
		cache: otter.Must(opts),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.cache.GetIfPresent(c.entry(key))
}

func (c *Cache[K, V]) Put(key K, val V) {
	c.cache.Set(c.entry(key), val)
}

func (c *Cache[K, V]) Evict(key K) {
	c.cache.SetExpiresAfter(c.entry(key), 1)
}

// Purge drops every live entry by advancing the generation counter.
// Stale entries age out of the underlying cache on their own.
func (c *Cache[K, V]) Purge() {
	c.gen.Add(1)
}

func (c *Cache[K, V]) entry(key K) entryKey[K] {
	return entryKey[K]{gen: c.gen.Load(), key: key}
}
