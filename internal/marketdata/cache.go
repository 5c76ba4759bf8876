// Package marketdata provides the TTL cache that sits between every consumer
// and the external market data provider. Cache-first: a fresh entry is served
// without touching the provider, an expired entry triggers one refresh, and a
// failed refresh falls back to the expired entry flagged as stale.
package marketdata

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/seetoh/stockdash/internal/domain"
)

// entry is one cached value with its lifecycle timestamps.
type entry struct {
	value     interface{}
	fetchedAt time.Time
	expiresAt time.Time
}

// Result carries a cache lookup outcome. Stale is true when the value came
// from an expired entry because the provider refresh failed; consumers must
// surface that flag rather than silently treating the data as current.
type Result struct {
	Value     interface{}
	FetchedAt time.Time
	Stale     bool
}

// Cache is an in-memory TTL cache with per-key request coalescing.
// Concurrent lookups of the same expired key share a single provider call.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	clock   domain.Clock
}

// NewCache creates an empty cache. A nil clock defaults to time.Now.
func NewCache(clock domain.Clock) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// GetOrFetch returns the value for key, calling fetch only when no fresh
// entry exists. On fetch failure an expired entry is returned with Stale set;
// with no entry at all the provider error wraps ErrDataUnavailable.
func (c *Cache) GetOrFetch(key string, ttl time.Duration, fetch func() (interface{}, error)) (Result, error) {
	now := c.clock()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && now.Before(e.expiresAt) {
		return Result{Value: e.value, FetchedAt: e.fetchedAt}, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have refreshed
		// the key while this one waited.
		now := c.clock()
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && now.Before(e.expiresAt) {
			return Result{Value: e.value, FetchedAt: e.fetchedAt}, nil
		}

		value, err := fetch()
		if err != nil {
			if ok {
				return Result{Value: e.value, FetchedAt: e.fetchedAt, Stale: true}, nil
			}
			return Result{}, fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, key, err)
		}

		c.mu.Lock()
		c.entries[key] = entry{value: value, fetchedAt: now, expiresAt: now.Add(ttl)}
		c.mu.Unlock()

		return Result{Value: value, FetchedAt: now}, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// Put stores a value directly, bypassing the fetch path. Used when restoring
// spilled entries at startup.
func (c *Cache) Put(key string, value interface{}, fetchedAt, expiresAt time.Time) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, fetchedAt: fetchedAt, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Invalidate removes the entry for key, forcing the next lookup to refetch.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll clears every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// EvictExpired drops entries that expired more than maxAge ago. Recently
// expired entries are kept so the stale fallback still has something to
// serve. Returns the number of entries removed.
func (c *Cache) EvictExpired(maxAge time.Duration) int {
	now := c.clock()
	cutoff := now.Add(-maxAge)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.expiresAt.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// snapshot returns a copy of all entries for the spill store.
func (c *Cache) snapshot() map[string]entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]entry, len(c.entries))
	for k, e := range c.entries {
		out[k] = e
	}
	return out
}
