package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryReportCache is the in-process fallback. Values are stored as JSON so
// Get behaves the same as the Redis cache, including the copy semantics.
type MemoryReportCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return true, nil
}

func (c *MemoryReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryReportCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}
