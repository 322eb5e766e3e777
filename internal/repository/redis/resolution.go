package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"marketpulse/internal/domain/market"
	"marketpulse/pkg/errors"
)

const resolutionKeyPrefix = "marketpulse:resolution:"

var _ market.ResolutionCache = (*ResolutionCache)(nil)

// ResolutionCache implements market.ResolutionCache on Redis.
// The Redis TTL only reclaims memory; freshness is still checked against ResolvedAt.
type ResolutionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResolutionCache creates a Redis-backed resolution cache
func NewResolutionCache(client *redis.Client, ttl time.Duration) *ResolutionCache {
	if ttl <= 0 {
		ttl = market.ResolutionTTL
	}
	return &ResolutionCache{client: client, ttl: ttl}
}

// Get loads a resolution; ok is false when the key is absent
func (c *ResolutionCache) Get(ctx context.Context, input string) (market.Resolution, bool, error) {
	data, err := c.client.Get(ctx, c.key(input)).Bytes()
	if err == redis.Nil {
		return market.Resolution{}, false, nil
	}
	if err != nil {
		return market.Resolution{}, false, errors.Wrapf(err, "failed to get resolution from redis: input=%s", input)
	}

	var r market.Resolution
	if err := json.Unmarshal(data, &r); err != nil {
		return market.Resolution{}, false, errors.Wrapf(err, "failed to unmarshal resolution: input=%s", input)
	}
	return r, true, nil
}

// Put stores or overwrites a resolution
func (c *ResolutionCache) Put(ctx context.Context, r market.Resolution) error {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal resolution: input=%s", r.Input)
	}
	if err := c.client.Set(ctx, c.key(r.Input), data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to save resolution to redis: input=%s", r.Input)
	}
	return nil
}

func (c *ResolutionCache) key(input string) string {
	return resolutionKeyPrefix + input
}
