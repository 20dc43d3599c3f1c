package cache

import (
	"container/list"
	"sync"
	"time"
)

// localEntry is one slot in the local tier's ordered map.
type localEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// LocalCache is a process-local LRU-with-TTL cache. It sits in front of the
// DistributedCache and is checked first on every Get (spec 4.1). Mutations
// are serialized by mu: the spec's cooperative-scheduler model assumes no
// explicit locks are needed, but this implementation runs on goroutines, so
// it guards the map per the spec's own fallback instruction for parallel
// runtimes (spec 5).
type LocalCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List // front = most recently used
}

// NewLocalCache creates a capacity-bounded, TTL-bounded local tier.
func NewLocalCache(capacity int, ttl time.Duration) *LocalCache {
	return &LocalCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the raw bytes for key and true, or nil/false on miss or
// expiry. Expired entries are deleted lazily on access (spec 4.1).
func (c *LocalCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*localEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		return nil, false
	}

	c.order.MoveToFront(el)
	return entry.value, true
}

// Set stores raw bytes under key with a TTL (defaulting to the cache's
// configured TTL when ttl <= 0), evicting the least-recently-used entry if
// the cache is over capacity.
func (c *LocalCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*localEntry).value = value
		el.Value.(*localEntry).expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}

	entry := &localEntry{key: key, value: value, expiresAt: time.Now().Add(ttl)}
	el := c.order.PushFront(entry)
	c.items[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*localEntry).key)
	}
}

// Delete removes a key if present.
func (c *LocalCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// DeleteMatching removes every key for which match returns true. Used by
// the two-tier cache to mirror a distributed-tier glob invalidation
// locally.
func (c *LocalCache) DeleteMatching(match func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for el := c.order.Front(); el != nil; el = el.Next() {
		if match(el.Value.(*localEntry).key) {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		c.order.Remove(el)
		delete(c.items, el.Value.(*localEntry).key)
	}
}

// Len returns the current number of stored entries, including expired ones
// that have not yet been removed.
func (c *LocalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
