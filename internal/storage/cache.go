package storage

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/scenario-ranker/internal/metrics"
)

// ListingCache keeps archive listings per symbol so repeated fetches skip the list call.
type ListingCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewListingCache creates a listing cache. A non-positive ttl disables expiry.
func NewListingCache(ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		return &ListingCache{cache: cache.New(cache.NoExpiration, 0), ttl: cache.NoExpiration}
	}
	return &ListingCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get returns a cached listing for symbol.
func (lc *ListingCache) Get(symbol string) ([]string, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if v, found := lc.cache.Get(symbol); found {
		if keys, ok := v.([]string); ok {
			lc.hitCount++
			metrics.RecordArchiveCache("hit")
			return append([]string(nil), keys...), true
		}
	}
	lc.missCount++
	metrics.RecordArchiveCache("miss")
	return nil, false
}

// Set stores a listing for symbol.
func (lc *ListingCache) Set(symbol string, keys []string) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.cache.Set(symbol, append([]string(nil), keys...), lc.ttl)
}

// Invalidate drops the listing for symbol, e.g. after an upload changed it.
func (lc *ListingCache) Invalidate(symbol string) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.cache.Delete(symbol)
}

// Stats returns cache statistics
func (lc *ListingCache) Stats() (hits, misses uint64, ratio float64) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	hits = lc.hitCount
	misses = lc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}
