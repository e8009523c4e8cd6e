package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// InMemoryReportCache is a ReportCache for tests and single-instance
// deployments. Values are stored as JSON to keep the same copy
// semantics as the Redis implementation.
type InMemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
}

type inMemoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewInMemoryReportCache creates an empty in-memory report cache
func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{entries: make(map[string]inMemoryEntry)}
}

// Get loads a cached value if present and not expired
func (c *InMemoryReportCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value with the given TTL
func (c *InMemoryReportCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = inMemoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

var _ ReportCache = (*InMemoryReportCache)(nil)
