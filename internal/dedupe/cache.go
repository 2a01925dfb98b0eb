// Package dedupe collapses repeated unanswered questions inside a time window.
package dedupe

import (
	"sync"
	"time"
)

type mark struct {
	key string
	at  time.Time
}

// Cache remembers record IDs for ttl, holding at most capacity of them.
// Oldest marks are evicted first.
type Cache struct {
	mu       sync.Mutex
	marks    map[string]time.Time
	queue    []mark
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(capacity int, ttl time.Duration, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		marks:    make(map[string]time.Time, capacity),
		queue:    make([]mark, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SeenOrMark reports whether key was already fresh and marks it otherwise,
// under one lock so concurrent consumers cannot both claim it.
func (c *Cache) SeenOrMark(key string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh(key, now) {
		return true
	}
	c.mark(key, now)
	return false
}

// Forget drops key so the next delivery is processed again.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.marks, key)
}

func (c *Cache) fresh(key string, now time.Time) bool {
	at, ok := c.marks[key]
	return ok && now.Sub(at) <= c.ttl
}

func (c *Cache) mark(key string, now time.Time) {
	c.marks[key] = now
	c.queue = append(c.queue, mark{key: key, at: now})
	c.evict(now)
}

// evict pops queue entries that are expired or over capacity. A queue entry
// whose key was re-marked later no longer owns the map slot and is skipped.
func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)
	for len(c.queue) > 0 && (len(c.marks) > c.capacity || c.queue[0].at.Before(cutoff) || c.stale(c.queue[0])) {
		head := c.queue[0]
		c.queue = c.queue[1:]
		if at, ok := c.marks[head.key]; ok && at.Equal(head.at) {
			delete(c.marks, head.key)
		}
	}
}

func (c *Cache) stale(m mark) bool {
	at, ok := c.marks[m.key]
	return !ok || !at.Equal(m.at)
}
