package statscache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/lifeboard/internal/domain/goals"
	"github.com/yanqian/lifeboard/pkg/util"
)

type entry struct {
	stats     goals.Stats
	expiresAt time.Time
}

// MemoryCache is an in-process stats cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     util.Clock
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     util.NowUTC,
	}
}

// Get implements goals.StatsCache.
func (c *MemoryCache) Get(_ context.Context, userID string) (goals.Stats, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return goals.Stats{}, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return goals.Stats{}, false, nil
	}
	return e.stats, true, nil
}

// Set caches stats with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, userID string, stats goals.Stats, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.entries[userID] = entry{stats: stats, expiresAt: exp}
	return nil
}

// Invalidate drops the user's entry.
func (c *MemoryCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

var _ goals.StatsCache = (*MemoryCache)(nil)
