package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout = 5 * time.Second
	// Revocation lookups sit on every authenticated request and fail open,
	// so reads give up quickly.
	defaultIOTimeout = 500 * time.Millisecond
)

// Config captures the settings for the revocation Redis.
type Config struct {
	Addr      string
	Password  string
	DB        int
	Timeout   time.Duration // dial and startup ping
	IOTimeout time.Duration // per command
}

// Connect creates a client tuned for revocation lookups and pings it. The
// client is closed again when the ping fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	dial := cfg.Timeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	io := cfg.IOTimeout
	if io <= 0 {
		io = defaultIOTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dial,
		ReadTimeout:  io,
		WriteTimeout: io,
		MaxRetries:   1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}
