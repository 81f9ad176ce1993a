package cache

import (
	"context"
	"time"

	"maintex-gateway/internal/core/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryExportCache is a bounded in-process cache. Entries also expire on
// their own after the configured TTL so stale workbooks do not linger.
type MemoryExportCache struct {
	lru *expirable.LRU[string, domain.ExportEntry]
}

// NewMemoryExportCache creates a cache holding at most size entries.
func NewMemoryExportCache(size int, ttl time.Duration) *MemoryExportCache {
	if size <= 0 {
		size = 256
	}
	return &MemoryExportCache{lru: expirable.NewLRU[string, domain.ExportEntry](size, nil, ttl)}
}

func (c *MemoryExportCache) Get(_ context.Context, key string) (*domain.ExportEntry, bool, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Set stores entry. The per-call ttl is ignored in favour of the cache-wide one.
func (c *MemoryExportCache) Set(_ context.Context, key string, entry *domain.ExportEntry, _ time.Duration) error {
	c.lru.Add(key, *entry)
	return nil
}

// Len returns the number of live entries
func (c *MemoryExportCache) Len() int {
	return c.lru.Len()
}
