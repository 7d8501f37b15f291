package auth

import (
	"context"
	"fmt"
	"time"

	"PlacementHub/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ReplayGuard marks reset credentials as used. Claim returns true only for
// the first caller presenting a given credential id; Release undoes a claim
// whose password change did not go through.
type ReplayGuard interface {
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id string) error
}

const replayKeyPrefix = "placementhub:reset:used:"

// RedisReplayGuard records used credential ids with SETNX; keys expire with
// the credential they guard.
type RedisReplayGuard struct {
	client *redis.Client
}

func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client}
}

func (g *RedisReplayGuard) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	return g.client.SetNX(ctx, replayKeyPrefix+id, 1, ttl).Result()
}

func (g *RedisReplayGuard) Release(ctx context.Context, id string) error {
	return g.client.Del(ctx, replayKeyPrefix+id).Err()
}

// openReplayGuard admits every credential until it expires.
type openReplayGuard struct{}

func (openReplayGuard) Claim(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (openReplayGuard) Release(context.Context, string) error { return nil }

// NewReplayGuard connects to Redis when REDIS_URL is set. Without Redis a
// reset credential stays usable for its whole lifetime.
func NewReplayGuard(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (ReplayGuard, error) {
	if cfg.Redis.URL == "" {
		log.Warn("REDIS_URL not set; reset credentials are not single-use")
		return openReplayGuard{}, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			log.Info("connected to Redis", zap.String("addr", opts.Addr))
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisReplayGuard(client), nil
}
