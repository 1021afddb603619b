// Package querycache holds list responses between renders and drops them
// when a mutation settles. It is the console's only cross-component
// coordination mechanism: a successful create/update/delete invalidates the
// resource, so the next table render refetches from the backend.
package querycache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value   any
	expires time.Time
	gen     uint64
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]map[string]entry
	gens    map[string]uint64
	group   singleflight.Group

	now func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]map[string]entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// Get returns the cached value for (resource, key) or runs fetch to fill it.
// Concurrent callers asking for the same key share a single fetch. A value
// fetched before an Invalidate cannot repopulate the cache afterwards: the
// resource generation is captured before the fetch and compared on store.
func (c *Cache) Get(ctx context.Context, resource, key string, ttl time.Duration, fetch func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if byKey, ok := c.entries[resource]; ok {
		if e, ok := byKey[key]; ok && c.now().Before(e.expires) {
			c.mu.Unlock()
			return e.value, nil
		}
	}
	gen := c.gens[resource]
	c.mu.Unlock()

	value, err, _ := c.group.Do(resource+"\x00"+key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gens[resource] == gen {
			byKey, ok := c.entries[resource]
			if !ok {
				byKey = make(map[string]entry)
				c.entries[resource] = byKey
			}
			byKey[key] = entry{value: v, expires: c.now().Add(ttl), gen: gen}
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Invalidate drops every cached key for the resource and bumps its
// generation so in-flight fetches cannot store stale data.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, resource)
	c.gens[resource]++
}

// Len reports the number of live keys for a resource; used by tests.
func (c *Cache) Len(resource string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[resource])
}
