package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/konbase/internal/config"
)

// Redis owns the single shared key-value client.  go-redis multiplexes
// concurrent callers over its own small connection pool, so there is no
// pooling logic here.
type Redis struct {
	client *redis.Client
}

// NewRedis builds a client from url and pings it.  A failed ping closes the
// client and returns the error.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	client, err := config.NewRedisClient(url)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client without contacting it.
func NewRedisFromClient(c *redis.Client) *Redis { return &Redis{client: c} }

// Client exposes the raw client for the repository layer.
func (r *Redis) Client() *redis.Client { return r.client }

// Ping round-trips a PING.
func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// TestConnection times a PING; it never returns an error.
func (r *Redis) TestConnection(ctx context.Context) Health {
	return probe(func() error { return r.Ping(ctx) })
}

func (r *Redis) Close() error { return r.client.Close() }
