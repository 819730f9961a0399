package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// pendingMarker occupies a key while its first request is still running.
const pendingMarker = "\x00pending"

var releasePendingScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// IdempotencyCache implements ports.IdempotencyCache using Redis.
type IdempotencyCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewIdempotencyCache creates a new Redis-backed idempotency cache.
func NewIdempotencyCache(client goredis.UniversalClient) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		prefix: "idempotency:",
	}
}

// Reserve sets the pending marker with SET NX. When the key already exists
// the stored response is returned, or nil while it is still pending.
func (c *IdempotencyCache) Reserve(ctx context.Context, key string, lease time.Duration) ([]byte, bool, error) {
	ok, err := c.client.SetNX(ctx, c.prefix+key, pendingMarker, lease).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis idempotency reserve: %w", err)
	}
	if ok {
		return nil, true, nil
	}

	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Lease ran out between SETNX and GET.
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis idempotency get: %w", err)
	}
	if string(val) == pendingMarker {
		return nil, false, nil
	}
	return val, false, nil
}

// Store replaces the reservation with the final response.
func (c *IdempotencyCache) Store(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

// Release deletes the key only while it still holds the pending marker.
func (c *IdempotencyCache) Release(ctx context.Context, key string) error {
	if err := releasePendingScript.Run(ctx, c.client, []string{c.prefix + key}, pendingMarker).Err(); err != nil {
		return fmt.Errorf("redis idempotency release: %w", err)
	}
	return nil
}
