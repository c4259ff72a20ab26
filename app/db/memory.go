package db

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	values  []string
	expires time.Time
}

// InMemoryCache keeps values in process memory
type InMemoryCache struct {
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
	mx    sync.RWMutex
}

func (c *InMemoryCache) Get(_ context.Context, key Key) ([]string, error) {
	c.mx.RLock()
	defer c.mx.RUnlock()
	item, ok := c.items[key.String()]
	if !ok || (!item.expires.IsZero() && !c.now().Before(item.expires)) {
		return nil, ErrNotFound
	}
	return append([]string(nil), item.values...), nil
}

func (c *InMemoryCache) Save(_ context.Context, key Key, values []string) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	item := memoryItem{values: append([]string(nil), values...)}
	if c.ttl > 0 {
		item.expires = c.now().Add(c.ttl)
	}
	c.items[key.String()] = item
	return nil
}

// NewInMemoryCache creates InMemoryCache, zero ttl never expires items
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}
