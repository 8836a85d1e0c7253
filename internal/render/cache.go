package render

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds rendered documents keyed by map, format and viewport size,
// evicting least recently used entries past capacity and entries older
// than the TTL.
type Cache struct {
	lru        *expirable.LRU[string, []byte]
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats reports cache occupancy and hit rate.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewCache creates a Cache. maxEntries below 1 is treated as 1; a ttl of
// zero keeps entries until they are evicted for space.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	maxEntries = max(maxEntries, 1)
	return &Cache{
		lru:        expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		maxEntries: maxEntries,
	}
}

// CacheKey names a rendered document.
func CacheKey(kind, format string, width, height float64) string {
	return fmt.Sprintf("%s.%s@%gx%g", kind, format, width, height)
}

// Get returns a cached document, or nil on a miss or an expired entry.
func (c *Cache) Get(key string) []byte {
	data, ok := c.lru.Get(key)
	if !ok {
		// Expired entries linger until the background sweep.
		c.lru.Remove(key)
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return data
}

// Put stores a document.
func (c *Cache) Put(key string, data []byte) {
	c.lru.Add(key, data)
}

// GetOrRender returns the cached document for key or renders, stores and
// returns it. hit reports whether the cache served it.
func (c *Cache) GetOrRender(key string, fn func() ([]byte, error)) (data []byte, hit bool, err error) {
	if b := c.Get(key); b != nil {
		return b, true, nil
	}
	b, err := fn()
	if err != nil {
		return nil, false, err
	}
	c.Put(key, b)
	return b, false, nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return CacheStats{
		Entries:    c.lru.Len(),
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    rate,
	}
}
