package cache

import (
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// Key is the 128-bit murmur3 sum of the exact lookup string. No
// normalization is applied: two URLs that differ only in query order or
// a trailing slash hash to different keys.
type Key struct {
	H1 uint64
	H2 uint64
}

// KeyFor hashes s into a cache key.
func KeyFor(s string) Key {
	h1, h2 := murmur3.Sum128([]byte(s))
	return Key{H1: h1, H2: h2}
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// TTLCache is a size-bounded map with per-entry expiry. Expired entries
// are swept on every access; when an insert finds the cache full, the
// entry with the oldest insertion timestamp is evicted. All access goes
// through a single mutex.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[Key]entry[V]
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache holding at most maxSize entries, each valid for ttl
// from its insertion.
func New[V any](maxSize int, ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		entries: make(map[Key]entry[V]),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get sweeps expired entries and returns the live value for key, if any.
func (c *TTLCache[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set sweeps expired entries, evicts the oldest entry if the cache is
// still full, and stores value under key with the current timestamp.
func (c *TTLCache[V]) Set(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Len reports the number of entries currently stored, expired or not.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTLCache[V]) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

func (c *TTLCache[V]) evictOldestLocked() {
	var oldestKey Key
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
