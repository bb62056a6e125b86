package application

import (
	"sync"
	"time"

	"github.com/example/salon-admin/internal/api"
)

// priceCache remembers service prices between dashboard loads so a reload
// does not refetch the catalogue while the prices are still fresh.
type priceCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]priceCacheEntry
}

type priceCacheEntry struct {
	price     api.FlexString
	expiresAt time.Time
}

func newPriceCache(ttl time.Duration, maxEntries int, now func() time.Time) *priceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 512
	}
	if now == nil {
		now = time.Now
	}
	return &priceCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]priceCacheEntry),
	}
}

func (c *priceCache) Get(serviceID string) (api.FlexString, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[serviceID]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, serviceID)
		c.mu.Unlock()
		return "", false
	}
	return entry.price, true
}

func (c *priceCache) Store(serviceID string, price api.FlexString) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if _, exists := c.entries[serviceID]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[serviceID] = priceCacheEntry{price: price, expiresAt: expiry}
}

func (c *priceCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]priceCacheEntry)
	c.mu.Unlock()
}

func (c *priceCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *priceCache) evictOneLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}
