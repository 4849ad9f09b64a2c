package rmdl

import (
	"encoding/binary"
	"path/filepath"
	"sync"
)

// Cache holds decoded models by key. Models are loaded from
// <dir>/<base>_LE.rmdl or <dir>/<base>_BE.rmdl depending on the byte order.
// A Cache is safe for concurrent use.
type Cache struct {
	dir   string
	order binary.ByteOrder

	mu     sync.RWMutex
	models map[string]*Model
}

// NewCache creates a cache reading models from dir in the given byte order.
// A nil order loads <base>.rmdl and detects the order from the header.
func NewCache(dir string, order binary.ByteOrder) *Cache {
	return &Cache{
		dir:    dir,
		order:  order,
		models: make(map[string]*Model),
	}
}

// Path returns the file a base name resolves to.
func (c *Cache) Path(base string) string {
	return filepath.Join(c.dir, FileName(base, c.order))
}

// Load returns the cached model for key, loading base on first use.
// Models that fail to load are not cached.
func (c *Cache) Load(base, key string) (*Model, error) {
	if m := c.Get(key); m != nil {
		return m, nil
	}

	m, err := Open(c.Path(base), c.order)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.models[key]; ok {
		return existing, nil
	}
	c.models[key] = m
	return m, nil
}

// Get returns the cached model for key, or nil.
func (c *Cache) Get(key string) *Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.models[key]
}

// Remove drops key from the cache.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	delete(c.models, key)
	c.mu.Unlock()
}

// Clear drops every cached model.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.models = make(map[string]*Model)
	c.mu.Unlock()
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}
