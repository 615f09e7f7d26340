package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idempotency stores raw replayable responses under "idemp:" keys.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

func (i *Idempotency) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := i.client.Get(ctx, "idemp:"+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return i.client.Set(ctx, "idemp:"+key, value, ttl).Err()
}
