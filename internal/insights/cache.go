package insights

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a dashboard is served before it is recomputed.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	dashboard Dashboard
	expires   time.Time
}

// dashboardCache holds one dashboard per user. Entries expire after the TTL
// or as soon as the civil day they were computed for has passed.
type dashboardCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// newDashboardCache creates a cache. A negative ttl disables caching and
// zero selects DefaultCacheTTL.
func newDashboardCache(ttl time.Duration) *dashboardCache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &dashboardCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *dashboardCache) get(userID, today string, now time.Time) (*Dashboard, bool) {
	if c.ttl < 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok || !now.Before(e.expires) || e.dashboard.AsOf != today {
		return nil, false
	}
	d := e.dashboard
	return &d, true
}

func (c *dashboardCache) put(userID string, d *Dashboard, now time.Time) {
	if c.ttl < 0 {
		return
	}

	c.mu.Lock()
	c.entries[userID] = cacheEntry{dashboard: *d, expires: now.Add(c.ttl)}
	c.mu.Unlock()
}

func (c *dashboardCache) delete(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// purge empties the cache and returns the number of entries dropped.
func (c *dashboardCache) purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	return n
}

func (c *dashboardCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
