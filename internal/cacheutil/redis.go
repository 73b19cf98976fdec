package cacheutil

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis is a Store backed by an existing go-redis client. It shares the
// client with the rest of the engine (pipeline queues, dialogue snapshots)
// rather than opening its own connection, so callers construct it with
// NewRedis(client) instead of an address.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client. The caller owns the client's
// lifecycle; Close on the returned Redis is a no-op so multiple cacheutil.Redis
// values can share one client without double-closing it.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Close() error { return nil }
