package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Cache hands the shared client to the Redis-backed helpers.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
