package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/sponsored-events/internal/adapters/redis"
	"github.com/robertarktes/sponsored-events/internal/observability"
)

// RateLimiter counts requests per key in fixed windows held in Redis.
type RateLimiter struct {
	redis  *redisadapter.Cache
	logger observability.Logger
}

func NewRateLimiter(redis *redisadapter.Cache, logger observability.Logger) *RateLimiter {
	return &RateLimiter{redis: redis, logger: logger}
}

// Allow reports whether key may make another request in the current window.
// Requests are let through when Redis is unavailable.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := "rl:" + key

	pipe := rl.redis.Client().TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, period)

	_, err := pipe.Exec(ctx)
	if err != nil {
		rl.logger.WithField("key", key).Warn("rate limit check failed: ", err)
		return true
	}

	if incr.Val() > int64(rate) {
		observability.RateLimitExceeded.Inc()
		return false
	}
	return true
}
