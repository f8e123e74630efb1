package cache

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
)

func TestNewSimulationCacheDisabled(t *testing.T) {
	c, err := NewSimulationCache(config.CacheConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("noop set returned error: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "k"); ok || err != nil {
		t.Errorf("noop get should miss, got ok=%v err=%v", ok, err)
	}
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisPort: "6380", RedisDB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "127.0.0.1:6380" || opts.DB != 2 {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.DialTimeout != defaultDialTimeout {
		t.Errorf("expected default dial timeout, got %v", opts.DialTimeout)
	}

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@cache:6379/3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.Password != "secret" || opts.DB != 3 {
		t.Errorf("unexpected options from url %+v", opts)
	}

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://cache:6379/0", DialTimeoutSeconds: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DialTimeout != 2*time.Second {
		t.Errorf("expected 2s dial timeout, got %v", opts.DialTimeout)
	}

	if _, err := buildRedisOptions(config.CacheConfig{RedisURL: "://bad"}); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestKeyPrefixAndTTL(t *testing.T) {
	if got := keyPrefix(config.CacheConfig{}); got != defaultKeyPrefix {
		t.Errorf("keyPrefix = %q, want %q", got, defaultKeyPrefix)
	}

	store := &redisStore{prefix: keyPrefix(config.CacheConfig{KeyPrefix: "sim:test:"})}
	if got := store.key("abc"); got != "sim:test:abc" {
		t.Errorf("key = %q", got)
	}

	if ttl := (config.CacheConfig{}).SimulationTTL(); ttl != time.Minute {
		t.Errorf("default ttl = %v", ttl)
	}
	if ttl := (config.CacheConfig{SimulationTTLSeconds: 30}).SimulationTTL(); ttl != 30*time.Second {
		t.Errorf("ttl = %v", ttl)
	}
}
