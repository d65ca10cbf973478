// Package cache provides the process-wide select-list cache for the
// reference catalogs.
//
// Entries have no TTL: staleness is bounded only by explicit invalidation,
// so every Create/Edit/Remove of a cached catalog must call [Cache.DeleteItem]
// for the corresponding key. A missed invalidation is a correctness bug.
package cache

import "sync"

// Key identifies a cached listing. Keys are a closed set so every
// invalidation site is checkable at compile time.
type Key int

const (
	ColorSelectList Key = iota
	SerialSelectList
)

func (k Key) String() string {
	switch k {
	case ColorSelectList:
		return "ColorSelectList"
	case SerialSelectList:
		return "SerialSelectList"
	default:
		return "unknown"
	}
}

// Cache is a typed-key memoization shared by concurrent callers. Reads and
// writes are atomic per key; it is injected as a dependency, never a global.
type Cache struct {
	mu    sync.RWMutex
	items map[Key]any
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{items: make(map[Key]any)}
}

// Contains reports whether a value is cached under the key.
func (c *Cache) Contains(k Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[k]
	return ok
}

// GetItem returns the cached value for the key, if present.
func (c *Cache) GetItem(k Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[k]
	return v, ok
}

// AddOrReplaceItem stores the value under the key, replacing any previous entry.
func (c *Cache) AddOrReplaceItem(k Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[k] = v
}

// DeleteItem removes the entry for the key. Deleting an absent key is a no-op.
func (c *Cache) DeleteItem(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, k)
}

// ItemAs returns the cached value for the key typed as T. A cached value of
// the wrong type counts as a miss.
func ItemAs[T any](c *Cache, k Key) (T, bool) {
	v, ok := c.GetItem(k)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
