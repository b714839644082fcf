package store

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Key builds a canonical cache key from an operation name and its arguments.
// Arguments are name=value pairs; they are sorted so argument order does not
// produce distinct keys.
func Key(op string, args ...string) string {
	if len(args) == 0 {
		return op
	}
	sorted := make([]string, len(args))
	copy(sorted, args)
	sort.Strings(sorted)
	return op + "?" + strings.Join(sorted, "&")
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache memoizes query results for a fixed TTL. It replaces framework-style
// memoization decorators with an explicit object that is injected into the
// service and can be cleared on demand.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry

	now func() time.Time
}

// NewCache creates a cache whose entries expire after ttl.
// A ttl <= 0 disables expiry.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have renewed it.
		if cur, still := c.entries[key]; still && !cur.expiresAt.IsZero() && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key. Expired entries are swept opportunistically.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = entry{value: value, expiresAt: expiresAt}

	now := c.now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Clear drops every entry. This is the manual invalidation entry point used
// by the dashboard refresh action.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of stored entries, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
