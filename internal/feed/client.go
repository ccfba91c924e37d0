package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// Client wraps the Redis client used by the feed.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient parses redisURL and waits for the server to answer a ping,
// backing off exponentially for up to attempts retries.
func NewClient(ctx context.Context, redisURL string, attempts uint64, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Debug("Redis not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for narration feed", "addr", opt.Addr)
	return &Client{rdb: rdb, logger: logger}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
