package cache

import (
	"context"
	"sync"
	"time"

	"hub-ops-service/internal/ports"
)

// MemoryReferenceCache holds one reference snapshot in process memory.
type MemoryReferenceCache struct {
	mu        sync.RWMutex
	snap      ports.ReferenceSnapshot
	expiresAt time.Time
	filled    bool
	now       func() time.Time
}

func NewMemoryReferenceCache() *MemoryReferenceCache {
	return &MemoryReferenceCache{now: time.Now}
}

var _ ports.ReferenceCache = (*MemoryReferenceCache)(nil)

func (c *MemoryReferenceCache) Get(ctx context.Context) (ports.ReferenceSnapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.filled || !c.now().Before(c.expiresAt) {
		return ports.ReferenceSnapshot{}, false, nil
	}
	return c.snap, true, nil
}

func (c *MemoryReferenceCache) Set(ctx context.Context, snap ports.ReferenceSnapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = snap
	c.expiresAt = c.now().Add(ttl)
	c.filled = true
	return nil
}

func (c *MemoryReferenceCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = ports.ReferenceSnapshot{}
	c.filled = false
	return nil
}
