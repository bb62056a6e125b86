package application

import (
	"testing"
	"time"
)

func TestPriceCacheExpiresEntries(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cache := newPriceCache(time.Second, 4, func() time.Time { return current })

	cache.Store("1", "10.00")
	if price, ok := cache.Get("1"); !ok || price != "10.00" {
		t.Fatalf("expected cache hit before expiry, got %q %v", price, ok)
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("1"); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestPriceCacheEvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cache := newPriceCache(time.Minute, 2, func() time.Time { return current })

	cache.Store("1", "10.00")
	current = current.Add(time.Second)
	cache.Store("2", "20.00")
	current = current.Add(time.Second)
	cache.Store("3", "30.00")

	if _, ok := cache.Get("1"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if _, ok := cache.Get("3"); !ok {
		t.Fatalf("expected newest entry present")
	}
}

func TestPriceCacheInvalidate(t *testing.T) {
	t.Parallel()

	cache := newPriceCache(time.Minute, 4, time.Now)
	cache.Store("1", "10.00")
	cache.Invalidate()
	if _, ok := cache.Get("1"); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}

	var nilCache *priceCache
	nilCache.Store("1", "1")
	if _, ok := nilCache.Get("1"); ok {
		t.Fatalf("expected nil cache to miss")
	}
}
