// Package redis caches reasoning gateway answers in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"safebite/internal/config"
	"safebite/internal/port"
)

const keyPrefix = "safebite:advice:"

// NewClient opens a Redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

type adviceCache struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// NewAdviceCache creates a port.AdviceCache backed by Redis. Entries expire
// after ttl; a zero ttl keeps them forever.
func NewAdviceCache(rdb goredis.Cmdable, ttl time.Duration) port.AdviceCache {
	return &adviceCache{rdb: rdb, ttl: ttl}
}

func (c *adviceCache) Get(ctx context.Context, key string) (*port.ExplainOutput, bool, error) {
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("adviceCache.Get: %w", err)
	}
	var out port.ExplainOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false, fmt.Errorf("adviceCache.Get: decoding entry: %w", err)
	}
	return &out, true, nil
}

func (c *adviceCache) Set(ctx context.Context, key string, out *port.ExplainOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("adviceCache.Set: encoding entry: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("adviceCache.Set: %w", err)
	}
	return nil
}
