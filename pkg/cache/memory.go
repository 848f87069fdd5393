package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bluele/gcache"
)

// DefaultMemoryEntries bounds a MemoryCache created with size zero.
const DefaultMemoryEntries = 1024

// MemoryCache is an in-process LRU cache. Entries are evicted when the cache
// is full or their TTL passes.
type MemoryCache struct {
	lru gcache.Cache
}

// NewMemoryCache returns an LRU cache holding at most size entries.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	return &MemoryCache{lru: gcache.New(size).LRU().Build()}
}

// Get returns a copy of the stored bytes.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := c.lru.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, _ := v.([]byte)
	return append([]byte(nil), data...), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	data = append([]byte(nil), data...)
	if ttl > 0 {
		return c.lru.SetWithExpire(key, data, ttl)
	}
	return c.lru.Set(key, data)
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int { return c.lru.Len(true) }

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
