// Package thumb generates visual representations for files entering the
// viewport, under a fixed concurrency budget, backed by a bounded cache.
package thumb

import (
	"container/list"
	"image"
	"sync"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
)

// Cache is a bounded path-to-thumbnail mapping with insertion-order
// eviction: when full, the oldest inserted entry still present is evicted.
// Entries are shared read-only across views and replaced, never mutated.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*list.Element
	order    *list.List // front = oldest inserted
	capacity int
}

type cacheEntry struct {
	path string
	img  image.Image
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	return &Cache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the cached representation for path. It is synchronous and
// never triggers generation; a miss re-enters the Submit path.
func (c *Cache) Get(path string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	el, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	return el.Value.(*cacheEntry).img, true
}

// Put stores a representation, evicting exactly one oldest entry first if
// the cache is at capacity. Re-inserting an existing path replaces the
// entry and refreshes its insertion position.
func (c *Cache) Put(path string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[path]; ok {
		c.order.Remove(el)
		delete(c.entries, path)
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*cacheEntry)
		c.order.Remove(oldest)
		delete(c.entries, evicted.path)
		debug.Log(debug.THUMB, "cache: evicted %s", evicted.path)
	}

	c.entries[path] = c.order.PushBack(&cacheEntry{path: path, img: img})
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
	debug.Log(debug.THUMB, "cache: cleared")
}
