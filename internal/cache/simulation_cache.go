package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
)

// SimulationCache stores encoded simulation responses by request fingerprint.
type SimulationCache interface {
	Get(ctx context.Context, fingerprint string) ([]byte, bool, error)
	Set(ctx context.Context, fingerprint string, payload []byte) error
	InvalidateAll(ctx context.Context) error
}

type redisSimulationCache struct {
	store *redisStore
}

type noopSimulationCache struct{}

// NewSimulationCache returns a redis-backed cache, or a no-op cache when caching is disabled.
func NewSimulationCache(cfg config.CacheConfig) (SimulationCache, error) {
	if !cfg.Enabled {
		return &noopSimulationCache{}, nil
	}

	store, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSimulationCache{store: store}, nil
}

func NewNoopSimulationCache() SimulationCache {
	return &noopSimulationCache{}
}

func (c *redisSimulationCache) Get(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	payload, err := c.store.client.Get(ctx, c.store.key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return payload, true, nil
}

func (c *redisSimulationCache) Set(ctx context.Context, fingerprint string, payload []byte) error {
	if err := c.store.client.Set(ctx, c.store.key(fingerprint), payload, c.store.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSimulationCache) InvalidateAll(ctx context.Context) error {
	deleted, err := c.store.deleteAll(ctx)
	if err != nil {
		return err
	}
	log.Debug().Int("keys", deleted).Str("prefix", c.store.prefix).Msg("simulation cache cleared")
	return nil
}

func (n *noopSimulationCache) Get(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *noopSimulationCache) Set(ctx context.Context, fingerprint string, payload []byte) error {
	return nil
}

func (n *noopSimulationCache) InvalidateAll(ctx context.Context) error {
	return nil
}
