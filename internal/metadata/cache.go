package metadata

import (
	"sync"
	"time"
)

// Cache is an in-memory TTL cache for provider responses.
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]cacheItem[V]
	ttl      time.Duration
	maxItems int
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	TTL      time.Duration
	MaxItems int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      6 * time.Hour,
		MaxItems: 20000,
	}
}

// NewCache creates a cache and starts its background sweeper. Call Stop to
// end the sweeper.
func NewCache[V any](cfg CacheConfig) *Cache[V] {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig().TTL
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultCacheConfig().MaxItems
	}

	c := &Cache[V]{
		items:    make(map[string]cacheItem[V]),
		ttl:      cfg.TTL,
		maxItems: cfg.MaxItems,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Get retrieves an unexpired item.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || c.now().After(item.expiresAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

// Set stores an item with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores an item with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.evict()
	}

	c.items[key] = cacheItem[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete removes an item.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem[V])
}

// Len returns the number of stored items, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop ends the background sweeper.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// evict drops expired items, then the tenth of the rest closest to expiry.
// Must be called with the lock held.
func (c *Cache[V]) evict() {
	c.sweepLocked()
	if len(c.items) < c.maxItems {
		return
	}

	toRemove := c.maxItems / 10
	if toRemove < 1 {
		toRemove = 1
	}

	for ; toRemove > 0 && len(c.items) > 0; toRemove-- {
		var oldestKey string
		var oldest time.Time
		for key, item := range c.items {
			if oldestKey == "" || item.expiresAt.Before(oldest) {
				oldestKey, oldest = key, item.expiresAt
			}
		}
		delete(c.items, oldestKey)
	}
}

func (c *Cache[V]) sweepLocked() {
	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

func (c *Cache[V]) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.sweepLocked()
			c.mu.Unlock()
		}
	}
}
