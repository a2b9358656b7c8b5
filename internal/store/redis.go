package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "normalization:result:"

// RedisResultCache caches records as JSON under normalization:result:<callId>.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

func CacheKey(callIdentifier string) string {
	return cacheKeyPrefix + callIdentifier
}

func (c *RedisResultCache) Set(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return c.client.Set(ctx, CacheKey(record.CallIdentifier), data, c.ttl).Err()
}

func (c *RedisResultCache) Get(ctx context.Context, callIdentifier string) (*Record, error) {
	val, err := c.client.Get(ctx, CacheKey(callIdentifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decode cached record: %w", err)
	}
	return &rec, nil
}
