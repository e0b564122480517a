package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores decrypted values in process memory. Implementations are safe for concurrent
// use.
type Cache interface {
	// Get returns the value for key if present and not expired.
	Get(key string) (any, bool)

	// Set stores value under key with the cache TTL.
	Set(key string, value any)

	// Delete removes key.
	Delete(key string)

	// DeletePrefix removes every key starting with prefix and reports how many were removed.
	DeletePrefix(prefix string) int

	// Len returns the number of live entries.
	Len() int

	// Purge removes everything.
	Purge()
}

// LRUCache is a Cache bounded by entry count and TTL.
type LRUCache struct {
	lru *expirable.LRU[string, any]
}

// NewLRUCache creates a cache holding at most size entries, each for at most ttl.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	return &LRUCache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Get implements Cache.
func (c *LRUCache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Set implements Cache.
func (c *LRUCache) Set(key string, value any) {
	c.lru.Add(key, value)
}

// Delete implements Cache.
func (c *LRUCache) Delete(key string) {
	c.lru.Remove(key)
}

// DeletePrefix implements Cache.
func (c *LRUCache) DeletePrefix(prefix string) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) && c.lru.Remove(key) {
			removed++
		}
	}
	return removed
}

// Len implements Cache.
func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// Purge implements Cache.
func (c *LRUCache) Purge() {
	c.lru.Purge()
}
