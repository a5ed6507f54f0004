package loader

import (
	"sync"

	"github.com/chrisdamba/tripdata/internal/models"
)

// Cache memoizes loaded trip tables keyed by source identity (file path
// plus modification signature, or URL plus validator). It is explicit and
// injectable so callers control invalidation; a nil Cache on the Loader
// disables memoization entirely.
type Cache interface {
	Get(key string) (*models.TripTable, bool)
	Put(key string, table *models.TripTable)
	Invalidate(key string)
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*models.TripTable
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*models.TripTable)}
}

func (c *MemoryCache) Get(key string) (*models.TripTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.entries[key]
	return table, ok
}

func (c *MemoryCache) Put(key string, table *models.TripTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = table
}

func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
