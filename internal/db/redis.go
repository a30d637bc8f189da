package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yigit/campusdesk/internal/config"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// ErrRedisNotReady is returned when every connection attempt failed
var ErrRedisNotReady = errors.New("redis is not ready")

// Redis wraps the go-redis client
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis, retrying RetryAttempts times RetryInterval apart
// within ConnectTimeout.
func NewRedis(ctx context.Context, cfg *config.Config) (*Redis, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Redis.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second

	attempts := cfg.Redis.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		client := redis.NewClient(opts)
		err := client.Ping(ctx).Err()
		if err == nil {
			return &Redis{Client: client}, nil
		}
		_ = client.Close()
		logger.Warn().Err(err).Int("attempt", attempt).Msg("Redis not reachable yet")

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.Redis.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// Healthy verifies redis connectivity
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close closes the client
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
