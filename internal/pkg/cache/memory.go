package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultMaxEntries bounds the in-process cache so memory stays flat
	// over process lifetime.
	DefaultMaxEntries = 512

	// DefaultTTL is how long an entry stays valid.
	DefaultTTL = 10 * time.Minute
)

// MemoryCache is a bounded in-process Cache backed by an expirable LRU.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates a MemoryCache. Non-positive maxEntries or ttl
// fall back to the defaults.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set stores value under key, overwriting any prior entry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	c.lru.Add(key, value)
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) {
	c.lru.Purge()
}

// Len returns the current number of entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
