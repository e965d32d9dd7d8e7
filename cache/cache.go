package cache

import (
	"sync"
	"time"

	"github.com/arkaf/wantmeta/models"
)

// entry holds a cached extraction with its expiry.
type entry struct {
	result    *models.ExtractionResult
	expiresAt time.Time
}

// Cache is an in-memory TTL cache for extraction results, keyed by the
// canonical (post-redirect) target URL. It is safe for concurrent use;
// concurrent writes for the same key are last-write-wins.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	ttl        time.Duration
	maxEntries int
	done       chan struct{}
}

// Stats reports the current state of the cache.
type Stats struct {
	Entries    int `json:"entries"`
	MaxEntries int `json:"max_entries"`
}

// New creates a Cache with the given TTL and capacity. A background
// goroutine evicts expired entries every 10 minutes.
func New(ttl time.Duration, maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Stop terminates the background cleanup goroutine. The cache itself
// stays usable; only the periodic expiry sweep ends.
func (c *Cache) Stop() {
	close(c.done)
}

// Get retrieves a cached result if it exists and has not expired.
// A miss is not an error; it returns (nil, false).
func (c *Cache) Get(key string) (*models.ExtractionResult, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}

	return e.result, true
}

// Set stores a result under the canonical URL. If the cache is at capacity,
// a random entry is evicted to make room (map iteration is random in Go).
func (c *Cache) Set(key string, result *models.ExtractionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Stats returns the current entry count and capacity.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.store), MaxEntries: c.maxEntries}
}

// cleanupLoop evicts expired entries every 10 minutes until Stop.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.store {
				if now.After(e.expiresAt) {
					delete(c.store, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
