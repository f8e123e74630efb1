package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
)

const (
	defaultKeyPrefix   = "simulation:run:"
	defaultDialTimeout = 5 * time.Second
	scanBatchSize      = 100
)

// redisStore is a namespaced view of one redis database: every key it
// touches carries prefix.
type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func dialRedis(cfg config.CacheConfig) (*redisStore, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return &redisStore{
		client: client,
		prefix: keyPrefix(cfg),
		ttl:    cfg.SimulationTTL(),
	}, nil
}

func keyPrefix(cfg config.CacheConfig) string {
	if cfg.KeyPrefix == "" {
		return defaultKeyPrefix
	}
	return cfg.KeyPrefix
}

func (s *redisStore) key(name string) string {
	return s.prefix + name
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	dialTimeout := defaultDialTimeout
	if cfg.DialTimeoutSeconds > 0 {
		dialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opt.DialTimeout = dialTimeout
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:        net.JoinHostPort(host, port),
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: dialTimeout,
	}, nil
}

// deleteAll removes every key under the store prefix and returns how many went.
func (s *redisStore) deleteAll(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	pattern := s.prefix + "*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis delete failed: %w", err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
