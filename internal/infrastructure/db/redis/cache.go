package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TextCache is a TTL string cache backed by Redis, used to park generated
// assist responses so identical prompts are not re-billed.
type TextCache struct {
	client *redis.Client
}

// NewTextCache creates a TextCache wrapping the given Redis client.
func NewTextCache(client *redis.Client) *TextCache {
	return &TextCache{client: client}
}

func (c *TextCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return val, true, nil
}

func (c *TextCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
