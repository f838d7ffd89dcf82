package plagiarism

import (
	"container/list"
	"fmt"
	"sync"
)

// DefaultCacheSize is the default maximum number of cached window alignments
const DefaultCacheSize = 10000

// CachePolicy selects what a full cache drops to make room
type CachePolicy string

const (
	// CachePolicyLRU evicts the least recently used entry
	CachePolicyLRU CachePolicy = "lru"
	// CachePolicyClear empties the whole cache
	CachePolicyClear CachePolicy = "clear"
)

// ParseCachePolicy converts a config value into a CachePolicy
func ParseCachePolicy(value string) (CachePolicy, error) {
	switch CachePolicy(value) {
	case CachePolicyLRU, CachePolicyClear:
		return CachePolicy(value), nil
	case "":
		return CachePolicyLRU, nil
	default:
		return "", fmt.Errorf("unknown cache policy %q (want %q or %q)", value, CachePolicyLRU, CachePolicyClear)
	}
}

// CacheStats reports cache activity
type CacheStats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Entries   int    `json:"entries"`
	Capacity  int    `json:"capacity"`
}

// Cache is a bounded key-value store. It never holds more than its
// capacity; what gets dropped on overflow depends on the policy.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	policy   CachePolicy
	items    map[K]*list.Element
	order    *list.List

	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewCache creates a cache holding at most capacity entries
func NewCache[K comparable, V any](capacity int, policy CachePolicy) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	if policy == "" {
		policy = CachePolicyLRU
	}
	return &Cache[K, V]{
		capacity: capacity,
		policy:   policy,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value for key and marks it recently used
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry[K, V]).value, true
}

// Put stores value under key, making room first if the cache is full
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry[K, V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		c.makeRoom()
	}

	elem := c.order.PushFront(&cacheEntry[K, V]{key: key, value: value})
	c.items[key] = elem
}

// Len returns the number of cached entries
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Stats returns a snapshot of the cache counters
func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   c.order.Len(),
		Capacity:  c.capacity,
	}
}

// makeRoom must be called with the lock held
func (c *Cache[K, V]) makeRoom() {
	switch c.policy {
	case CachePolicyClear:
		c.evictions += uint64(c.order.Len())
		c.reset()
	default:
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry[K, V]).key)
		c.evictions++
	}
}

func (c *Cache[K, V]) reset() {
	c.items = make(map[K]*list.Element)
	c.order.Init()
}
