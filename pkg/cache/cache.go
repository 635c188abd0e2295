// Package cache provides a thread-safe in-memory cache with TTL support.
//
// Entries live only for the duration of one invocation; there is no
// persistence and no background cleanup. Expired entries are dropped
// lazily on read.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	expires time.Time
	value   any
}

// Cache is a thread-safe map of string keys to values with expiry.
type Cache struct {
	entries map[string]entry
	ttl     time.Duration
	mu      sync.RWMutex
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Get retrieves a value if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Now().After(e.expires) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry in the meantime.
		if e, ok := c.entries[key]; ok && time.Now().After(e.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set stores a value with the cache's default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:   value,
		expires: time.Now().Add(ttl),
	}
}

// Len returns the number of entries currently stored, including any that
// have expired but not yet been evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
