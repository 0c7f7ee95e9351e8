// Package cache provides read caches for the public post endpoints: an
// in-process TTL cache and a Redis-backed one for multi-instance deployments.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	data    []byte
	fetched time.Time
}

// Memory is an in-process cache of JSON-encoded values with a TTL.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a Memory cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (c *Memory) valid(e entry) bool {
	return c.now().Sub(e.fetched) < c.ttl
}

// Get decodes the value under key into dst. It reports false when the key is
// missing or expired.
func (c *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !c.valid(e) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !c.valid(cur) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Memory) Set(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = entry{data: data, fetched: c.now()}
	c.mu.Unlock()
	return nil
}

// Purge clears the cache so the next read triggers a fresh load.
func (c *Memory) Purge(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
