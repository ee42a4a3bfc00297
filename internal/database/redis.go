package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/config"
)

// NewRedisClient connects to REDIS_URL. It returns ErrRedisNotConfigured when
// the URL is empty so callers can fall back to no-op behaviour.
func NewRedisClient(cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, ErrRedisNotConfigured
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	logger.Info("🔌 [Redis] Connecting to Redis...",
		"addr", opts.Addr,
		"db", opts.DB,
	)

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [Redis] Redis connection established")

	return client, nil
}

var ErrRedisNotConfigured = errors.New("redis is not configured")
