package rates

import (
	"container/list"
	"sync"
)

// Cache is a bounded key-value cache with oldest-inserted eviction.
// Unlike an LRU, Get does not refresh an entry's position: once the
// capacity is exceeded the key inserted earliest is dropped, no matter
// how often it was read. Entries never expire.
type Cache[T any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]T
	order    *list.List // keys, oldest at the back
}

// NewCache creates a cache holding at most capacity distinct keys.
func NewCache[T any](capacity int) *Cache[T] {
	return &Cache[T]{
		capacity: capacity,
		items:    make(map[string]T, capacity),
		order:    list.New(),
	}
}

// Get retrieves a value from the cache.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items[key]
	return v, ok
}

// Set stores a value. Overwriting an existing key keeps its original
// insertion position.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		c.items[key] = value
		return
	}

	c.items[key] = value
	c.order.PushFront(key)

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(string))
			c.order.Remove(oldest)
		}
	}
}

// Len returns the current number of cached keys.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
