// Package cache provides the TTL cache for resolved placeholder values.
package cache

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long a resolved value list stays fresh.
const DefaultTTL = 5 * time.Minute

// Clock returns the current time. Injectable for deterministic TTL tests.
type Clock func() time.Time

// SuggestionCache is an in-memory TTL cache mapping
// (placeholderKind, database.schema) to a resolved value list.
//
// Eviction is lazy: expiry is checked on read, never proactively. Writes to
// the same key are last-write-wins; the cache provides no read-modify-write
// atomicity since staleness only affects suggestion quality.
type SuggestionCache struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	ttl   time.Duration
	now   Clock
}

type cacheEntry struct {
	values     []string
	insertedAt time.Time
}

// New creates a cache with the given TTL. A non-positive TTL falls back to
// DefaultTTL.
func New(ttl time.Duration) *SuggestionCache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a cache with an explicit clock.
func NewWithClock(ttl time.Duration, now Clock) *SuggestionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SuggestionCache{
		cache: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   now,
	}
}

// Key builds the canonical cache key for a placeholder kind scoped to a
// database/schema pair.
func Key(kind, database, schema string) string {
	return fmt.Sprintf("%s|%s.%s", kind, database, schema)
}

// Get retrieves a fresh value list. An expired entry reports as a miss;
// the entry is left for a later Set to replace.
func (c *SuggestionCache) Get(key string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		return nil, false
	}
	return entry.values, true
}

// Set stores a value list under the key, replacing any previous entry.
func (c *SuggestionCache) Set(key string, values []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		values:     values,
		insertedAt: c.now(),
	}
}

// Invalidate removes a single key.
func (c *SuggestionCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

// Clear drops every entry.
func (c *SuggestionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cacheEntry)
}

// Len returns the number of stored entries, including ones that have
// expired but not yet been replaced.
func (c *SuggestionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
