package resolver

import (
	"context"
	"sync"

	"marketpulse/internal/domain/market"
)

// MemoryCache is a process-local resolution cache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]market.Resolution
}

var _ market.ResolutionCache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]market.Resolution)}
}

// Get returns the stored resolution for input, fresh or not
func (c *MemoryCache) Get(_ context.Context, input string) (market.Resolution, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[input]
	return res, ok, nil
}

// Put stores r, overwriting any previous entry for the same input
func (c *MemoryCache) Put(_ context.Context, r market.Resolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[r.Input] = r
	return nil
}

// Len returns the number of stored entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
