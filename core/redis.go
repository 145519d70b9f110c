package core

import (
	"context"
	"fmt"
	"time"

	"argus/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// maxCacheValueSize rejects oversized cache entries to bound Redis memory.
const maxCacheValueSize = 10 * 1024 * 1024 // 10MB

// RedisCache is a Redis-backed cache for analysis results. Values are
// msgpack-encoded.
type RedisCache struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// NewRedisCache creates a new Redis cache instance.
func NewRedisCache(addr, password string, db, poolSize int, logger *zap.SugaredLogger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	return &RedisCache{
		client: client,
		logger: logger,
	}
}

// Ping tests the Redis connection.
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Set stores a value in the cache with expiration.
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		rc.logger.Errorf("Failed to encode cache value for key %s: %v", key, err)
		metrics.CacheErrors.WithLabelValues("redis", "encode").Inc()
		return err
	}

	if len(data) > maxCacheValueSize {
		metrics.CacheErrors.WithLabelValues("redis", "size_limit").Inc()
		return fmt.Errorf("cache value size %d bytes exceeds maximum allowed size %d bytes", len(data), maxCacheValueSize)
	}

	if err := rc.client.Set(ctx, key, data, expiration).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "set").Inc()
		return err
	}
	return nil
}

// Get retrieves a value from the cache into dest. The boolean reports
// whether the key was present.
func (rc *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.CacheMisses.WithLabelValues("redis").Inc()
			return false, nil
		}
		rc.logger.Errorf("Failed to get cache value for key %s: %v", key, err)
		metrics.CacheErrors.WithLabelValues("redis", "get").Inc()
		return false, err
	}

	if err := msgpack.Unmarshal(data, dest); err != nil {
		rc.logger.Errorf("Failed to decode cache value for key %s: %v", key, err)
		metrics.CacheErrors.WithLabelValues("redis", "decode").Inc()
		return false, err
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true, nil
}

// Delete removes a key from the cache.
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, key).Err()
}

// Exists checks if a key exists in the cache.
func (rc *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := rc.client.Exists(ctx, key).Result()
	return count > 0, err
}

// GetTTL returns the remaining TTL for a key.
func (rc *RedisCache) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rc.client.TTL(ctx, key).Result()
}

// Stats returns basic keyspace statistics for the stats endpoint.
func (rc *RedisCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	size, err := rc.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache size: %w", err)
	}
	return map[string]interface{}{
		"backend": "redis",
		"keys":    size,
	}, nil
}

// CacheKeyIOCPrefix namespaces analysis result cache entries.
const CacheKeyIOCPrefix = "ioc:"

// IOCCacheKey generates the cache key for an analyzed indicator.
func IOCCacheKey(value string) string {
	return CacheKeyIOCPrefix + value
}
