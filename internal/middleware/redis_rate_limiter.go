package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/logging"
)

// RedisCounter is the subset of the go-redis client used by RedisRateLimiter.
type RedisCounter interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RedisRateLimiter is a fixed-window counter shared by every instance using
// the same Redis.
type RedisRateLimiter struct {
	client RedisCounter
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisRateLimiter allows `requests` events per key in each `window`.
func NewRedisRateLimiter(client RedisCounter, prefix string, requests int, window time.Duration) *RedisRateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{client: client, prefix: prefix, limit: int64(requests), window: window}
}

// Allow increments the key's counter. Redis failures allow the request.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		key = "unknown"
	}
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	// SET NX EX creates the window with its TTL; INCR keeps that TTL.
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, l.window)
		incr = pipe.Incr(ctx, redisKey)
		return nil
	})
	if err != nil {
		logging.FromContext(ctx).Error("rate limiter transaction", "key", redisKey, "error", err)
		return true
	}
	return incr.Val() <= l.limit
}

var _ RateLimiter = (*RedisRateLimiter)(nil)
