// Package memory provides an in-process driven.FetchCache.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.FetchCache = (*Cache)(nil)

// Cache is an in-memory fetch cache. Entries live until Invalidate, Clear
// or process exit.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.FileMap
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]domain.FileMap),
	}
}

// Get returns a copy of the cached files for a key.
func (c *Cache) Get(_ context.Context, key string) (domain.FileMap, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	files, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return files.Clone(), true, nil
}

// Put stores a copy of files under key.
func (c *Cache) Put(_ context.Context, key string, files domain.FileMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = files.Clone()
	return nil
}

// Invalidate removes one key.
func (c *Cache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.FileMap)
	return nil
}

// Len returns the number of cached repositories.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close is a no-op.
func (c *Cache) Close() error {
	return nil
}
