// Package redis connects the console to the Redis instance backing the
// project reaction counters.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"civreg/internal/platform/config"
)

// healthTimeout bounds the readiness probe so a wedged Redis cannot stall
// /healthz.
const healthTimeout = 3 * time.Second

// Client wraps the go-redis client used by the reaction counter store.
type Client struct {
	*redis.Client
}

// New connects using the counter store configuration. A blank URL means the
// deployment runs without Redis; callers get nil and fall back to
// store-backed tallies.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health probes the connection. The signature matches the router's
// HealthChecker so the client plugs straight into /healthz.
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
