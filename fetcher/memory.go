package fetcher

import (
	"sync"
	"time"
)

// profileEntry stores the preferred profile index for a domain with a TTL.
type profileEntry struct {
	profile   int
	expiresAt time.Time
}

// ProfileMemory remembers which request profile last got a non-blocked
// response out of each domain, so the next request to that domain starts
// its rotation there instead of at profile zero. Entries expire after the
// configured TTL and are pruned periodically.
type ProfileMemory struct {
	store sync.Map // domain (string) -> *profileEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewProfileMemory creates a ProfileMemory with the given TTL and starts
// a background goroutine that prunes expired entries every hour.
func NewProfileMemory(ttl time.Duration) *ProfileMemory {
	pm := &ProfileMemory{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go pm.cleanupLoop()
	return pm
}

// Get returns the remembered profile index for a domain, or -1 if not
// found / expired.
func (pm *ProfileMemory) Get(domain string) int {
	val, ok := pm.store.Load(domain)
	if !ok {
		return -1
	}
	entry := val.(*profileEntry)
	if time.Now().After(entry.expiresAt) {
		pm.store.Delete(domain)
		return -1
	}
	return entry.profile
}

// Set records which profile got through for a domain.
func (pm *ProfileMemory) Set(domain string, profile int) {
	pm.store.Store(domain, &profileEntry{
		profile:   profile,
		expiresAt: time.Now().Add(pm.ttl),
	})
}

// Delete removes the memory for a domain (e.g. after the remembered
// profile gets blocked again).
func (pm *ProfileMemory) Delete(domain string) {
	pm.store.Delete(domain)
}

// Stop terminates the background cleanup goroutine.
func (pm *ProfileMemory) Stop() {
	close(pm.done)
}

// cleanupLoop runs every hour, deleting expired entries.
func (pm *ProfileMemory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-pm.done:
			return
		case <-ticker.C:
			now := time.Now()
			pm.store.Range(func(key, value any) bool {
				entry := value.(*profileEntry)
				if now.After(entry.expiresAt) {
					pm.store.Delete(key)
				}
				return true
			})
		}
	}
}
