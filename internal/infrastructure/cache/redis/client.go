// Package redis wires the cache-store primitives (§4.2, §4.6, §4.8, §5) onto
// a single go-redis client.
package redis

import (
	"context"
	"fmt"

	"github.com/pannpers/go-logging/logging"
	goredis "github.com/redis/go-redis/v9"
	"github.com/wavebreaker/backend/pkg/config"
)

// Client wraps a go-redis client shared by the ticket cache, session store,
// leaderboard, and submit lock.
type Client struct {
	rdb    *goredis.Client
	logger *logging.Logger
}

// New connects to Redis and verifies reachability with a PING.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewWithClient wraps an already-constructed go-redis client, used by tests
// to inject a miniredis-backed instance.
func NewWithClient(rdb *goredis.Client, logger *logging.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
