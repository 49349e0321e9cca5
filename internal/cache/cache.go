package cache

import (
	"sync"
	"time"
)

// Cache is a TTL map. Expired entries are dropped lazily on Get and in bulk
// by Sweep.
type Cache[V any] struct {
	mu  sync.RWMutex
	m   map[string]entry[V]
	now func() time.Time
}
type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any]() *Cache[V] {
	return &Cache[V]{
		m:   make(map[string]entry[V]),
		now: time.Now,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}

	if now.After(e.exp) {
		c.evict(key, now)
		var zero V
		return zero, false
	}

	return e.val, true
}

// evict deletes key only if it is still expired; it may have been set again
// since the read lock was released.
func (c *Cache[V]) evict(key string, now time.Time) {
	c.mu.Lock()
	if cur, ok := c.m[key]; ok && now.After(cur.exp) {
		delete(c.m, key)
	}
	c.mu.Unlock()
}

// SetUntil stores val until exp.
func (c *Cache[V]) SetUntil(key string, val V, exp time.Time) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: exp}
	c.mu.Unlock()
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache[V]) Sweep() int {
	now := c.now()
	n := 0
	c.mu.Lock()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			n++
		}
	}
	c.mu.Unlock()
	return n
}
