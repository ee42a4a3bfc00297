package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per key within a fixed window
type Limiter interface {
	// Allow records one request for key.
	// Returns: allowed bool, remaining int64 (-1 when unlimited), error
	Allow(ctx context.Context, key string) (bool, int64, error)

	// Remaining returns how many requests key has left in the current window
	Remaining(ctx context.Context, key string) (int64, error)

	// Reset forgets the requests of key in the current window
	Reset(ctx context.Context, key string) error

	// Close closes the Redis connection
	Close() error
}

type redisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// New returns a Redis fixed-window limiter allowing limit requests per window.
// A nil client yields the no-op limiter.
func New(client *redis.Client, prefix string, limit int64, window time.Duration, logger *slog.Logger) Limiter {
	if client == nil {
		return NewNoOpLimiter(logger)
	}

	logger.Info("✅ [RateLimiter] Redis rate limiter ready",
		"prefix", prefix,
		"limit", limit,
		"window", window,
	)

	return &redisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// windowKey generates the Redis key for the current window
// Format: rate:{prefix}:{key}:{window start unix}
func (r *redisLimiter) windowKey(key string) string {
	start := r.now().UTC().Truncate(r.window).Unix()
	return fmt.Sprintf("rate:%s:%s:%d", r.prefix, key, start)
}

func (r *redisLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	// If limit is 0 or negative, unlimited
	if r.limit <= 0 {
		return true, -1, nil
	}

	windowKey := r.windowKey(key)
	pipe := r.client.Pipeline()

	// Increment the counter and let it expire with its window
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to increment counter", "error", err, "key", key)
		// On error, allow the request but report it
		return true, r.limit, err
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	if count > r.limit {
		r.logger.Warn("⚠️ [RateLimiter] Limit exceeded", "key", key, "count", count, "limit", r.limit)
		return false, 0, nil
	}
	return true, remaining, nil
}

func (r *redisLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	if r.limit <= 0 {
		return -1, nil
	}

	count, err := r.client.Get(ctx, r.windowKey(key)).Int64()
	if err == redis.Nil {
		return r.limit, nil
	}
	if err != nil {
		return 0, err
	}

	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (r *redisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.windowKey(key)).Err()
}

func (r *redisLimiter) Close() error {
	return r.client.Close()
}

// NoOpLimiter is a limiter that always allows requests
// Used when Redis is not available
type NoOpLimiter struct {
	logger *slog.Logger
}

// NewNoOpLimiter creates a no-op limiter
func NewNoOpLimiter(logger *slog.Logger) Limiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return &NoOpLimiter{logger: logger}
}

func (l *NoOpLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	return true, -1, nil
}

func (l *NoOpLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	return -1, nil
}

func (l *NoOpLimiter) Reset(ctx context.Context, key string) error {
	return nil
}

func (l *NoOpLimiter) Close() error {
	return nil
}
