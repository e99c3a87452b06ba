package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "attempts:"

// AttemptLimiter counts attempts per key in fixed windows (INCR + EXPIRE).
type AttemptLimiter struct {
	client *goredis.Client
	limit  int64
	window time.Duration
}

func NewAttemptLimiter(client *goredis.Client, limit int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{client: client, limit: int64(limit), window: window}
}

// Allow records one attempt and reports whether it is within the limit. When
// the limit is exceeded, retryAfter is the remaining window.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := keyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("incr %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	if count <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("pttl %s: %w", redisKey, err)
	}
	if ttl < 0 {
		// key lost its expiry, e.g. the EXPIRE above failed mid-way
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("expire %s: %w", redisKey, err)
		}
		ttl = l.window
	}
	return false, ttl, nil
}

// Reset forgets all attempts for key.
func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, keyPrefix+key).Err()
}
