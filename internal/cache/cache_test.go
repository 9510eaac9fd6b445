package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestCache(maxSize int, ttl time.Duration) (*TTLCache[string], *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New[string](maxSize, ttl)
	c.now = clock.Now
	return c, clock
}

func TestKeyFor_Deterministic(t *testing.T) {
	url := "https://cdn.example.com/spawns/25.png"
	assert.Equal(t, KeyFor(url), KeyFor(url))
}

func TestKeyFor_ExactStringMatching(t *testing.T) {
	base := KeyFor("https://cdn.example.com/img?x=1&y=2")
	assert.NotEqual(t, base, KeyFor("https://cdn.example.com/img?y=2&x=1"))
	assert.NotEqual(t, KeyFor("https://cdn.example.com/img"), KeyFor("https://cdn.example.com/img/"))
}

func TestTTLCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)

	c.Set(KeyFor("a"), "first")
	c.Set(KeyFor("b"), "second")

	val, ok := c.Get(KeyFor("a"))
	assert.True(t, ok)
	assert.Equal(t, "first", val)

	val, ok = c.Get(KeyFor("b"))
	assert.True(t, ok)
	assert.Equal(t, "second", val)
}

func TestTTLCache_GetMissing(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)

	val, ok := c.Get(KeyFor("missing"))
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestTTLCache_EntryExpiresAtTtl(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)
	key := KeyFor("a")
	c.Set(key, "value")

	clock.Advance(time.Hour - time.Second)
	_, ok := c.Get(key)
	assert.True(t, ok, "entry should still be live just before the TTL")

	clock.Advance(time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok, "entry should be gone once the TTL has elapsed")
}

func TestTTLCache_GetSweepsAllExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)
	c.Set(KeyFor("a"), "1")
	c.Set(KeyFor("b"), "2")
	c.Set(KeyFor("c"), "3")
	require.Equal(t, 3, c.Len())

	clock.Advance(2 * time.Hour)
	_, ok := c.Get(KeyFor("a"))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "a single lookup should sweep every expired entry")
}

func TestTTLCache_SetSweepsBeforeEvicting(t *testing.T) {
	c, clock := newTestCache(2, time.Hour)
	c.Set(KeyFor("a"), "1")
	c.Set(KeyFor("b"), "2")

	clock.Advance(2 * time.Hour)
	c.Set(KeyFor("c"), "3")

	assert.Equal(t, 1, c.Len(), "expired entries should be swept instead of evicted")
	val, ok := c.Get(KeyFor("c"))
	assert.True(t, ok)
	assert.Equal(t, "3", val)
}

func TestTTLCache_EvictsOldestInsertionWhenFull(t *testing.T) {
	c, clock := newTestCache(3, time.Hour)
	for i, key := range []string{"a", "b", "c"} {
		c.Set(KeyFor(key), fmt.Sprintf("v%d", i))
		clock.Advance(time.Second)
	}

	c.Set(KeyFor("d"), "v3")

	assert.Equal(t, 3, c.Len())
	_, ok := c.Get(KeyFor("a"))
	assert.False(t, ok, "the oldest entry should have been evicted")
	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(KeyFor(key))
		assert.True(t, ok, "entry %s should survive the eviction", key)
	}

	clock.Advance(time.Second)
	c.Set(KeyFor("e"), "v4")
	_, ok = c.Get(KeyFor("e"))
	assert.True(t, ok, "the newest entry must never be the eviction victim")
	assert.Equal(t, 3, c.Len())
}

func TestTTLCache_StaysAtOrUnderMaxSize(t *testing.T) {
	c, clock := newTestCache(5, time.Hour)
	for i := 0; i < 20; i++ {
		c.Set(KeyFor(fmt.Sprintf("url-%d", i)), "v")
		clock.Advance(time.Millisecond)
		assert.LessOrEqual(t, c.Len(), 5)
	}
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	c := New[int](100, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := KeyFor(fmt.Sprintf("url-%d", j%50))
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
}
