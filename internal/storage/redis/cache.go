package redis

import (
	"sync"
	"time"
)

// readCache is a short-lived local cache of raw record bytes, keyed by
// Redis key. It absorbs read bursts (many players polling the same room)
// without a round trip. Entries are invalidated whenever the corresponding
// key is written or deleted, so staleness is bounded by the TTL.
type readCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func newReadCache(ttl time.Duration) *readCache {
	return &readCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *readCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.data, true
}

func (c *readCache) set(key string, data []byte) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *readCache) invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
