package memory

import (
	"context"
	"sync"
	"time"

	portidempotency "github.com/alanyang/product-catalog/internal/port/idempotency"
)

var _ portidempotency.Store = (*Cache)(nil)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a TTL store of idempotent responses. It backs the idempotency
// middleware when no shared store is configured.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Lookup ignores expired entries; Purge reclaims them.
func (c *Cache) Lookup(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Save never overwrites a live entry so the first response for a key stays
// authoritative.
func (c *Cache) Save(_ context.Context, key string, response []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok && !c.now().After(entry.expiresAt) {
		return nil
	}
	c.entries[key] = cacheEntry{value: response, expiresAt: c.now().Add(ttl)}
	return nil
}

// Purge drops expired entries and reports how many were removed.
func (c *Cache) Purge(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	var n int64
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			n++
		}
	}
	return n, nil
}
