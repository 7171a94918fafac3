// Package ratelimit bounds how often a connection may invoke state-changing
// actions. Counters are fixed-window: the first action in a window starts
// the expiry, subsequent actions increment, and the window resets when the
// key expires.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default policy applied by the room state machine
const (
	DefaultLimit  = 100
	DefaultWindow = 60 * time.Second
)

// Limiter decides whether an action identified by key is allowed within
// the current window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Key builds the canonical limiter key for a connection/action pair
func Key(connectionID, action string) string {
	return fmt.Sprintf("%s:%s", connectionID, action)
}

// RedisLimiter implements a fixed-window counter on Redis
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a limiter backed by the given Redis client
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

var _ Limiter = (*RedisLimiter)(nil)

// Allow increments the window counter for key and reports whether the
// count is still within limit
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rateKey := fmt.Sprintf("rapidquack:rate:%s", key)

	count, err := l.client.Incr(ctx, rateKey).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, rateKey, window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

// Unlimited is a no-op limiter that allows everything. It is used when the
// durable backend is unavailable: rate limiting fails open rather than
// blocking gameplay.
type Unlimited struct{}

// NewUnlimited creates an Unlimited limiter
func NewUnlimited() *Unlimited {
	return &Unlimited{}
}

var _ Limiter = (*Unlimited)(nil)

// Allow always permits the action
func (l *Unlimited) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
