package llm

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

// ResponseCache keeps completion texts in memory for a fixed TTL.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	text      string
	timestamp time.Time
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached text if present and not expired.
func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[hashKey(key)]
	if !exists {
		return "", false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		return "", false
	}
	return entry.text, true
}

func (c *ResponseCache) Set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[hashKey(key)] = cacheEntry{text: text, timestamp: c.now()}
}

// CleanExpired removes expired entries (call periodically)
func (c *ResponseCache) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func hashKey(key string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}
