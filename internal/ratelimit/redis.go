// Package ratelimit provides a Redis-backed fixed-window request limiter for
// the unauthenticated assistant endpoint.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per key within a fixed window. A nil *Limiter is
// valid and allows everything, so callers can run without Redis configured.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// New connects to Redis and returns a limiter allowing limit requests per
// window for each key.
func New(redisURL string, limit int, window time.Duration) (*Limiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, limit, window), nil
}

// NewWithClient builds a limiter from an existing Redis client.
func NewWithClient(client *redis.Client, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		client: client,
		prefix: "ratelimit:assistant:",
		limit:  limit,
		window: window,
	}
}

// Allow increments the counter for key and reports whether the request is
// within the window's budget. Redis failures fail open: throttling is a
// protection, not a correctness requirement.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return true
	}

	redisKey := l.prefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		// First hit in this window sets the expiry.
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true
		}
	}
	return count <= int64(l.limit)
}

// Close closes the underlying Redis connection.
func (l *Limiter) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}

// Ping checks whether Redis is reachable.
func (l *Limiter) Ping(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.client.Ping(ctx).Err()
}
