package statscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/lifeboard/internal/domain/goals"
)

// ValkeyCache stores goal statistics in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "lifeboard"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, userID string) (goals.Stats, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.statsKey(userID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return goals.Stats{}, false, nil
		}
		return goals.Stats{}, false, err
	}
	var stats goals.Stats
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		return goals.Stats{}, false, err
	}
	return stats, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, userID string, stats goals.Stats, ttl time.Duration) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.statsKey(userID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(c.statsKey(userID)).Build()).Error()
}

func (c *ValkeyCache) statsKey(userID string) string {
	return fmt.Sprintf("%s:stats:%s", c.prefix, userID)
}

var _ goals.StatsCache = (*ValkeyCache)(nil)
