package analyzer

import (
	"context"
	"time"

	"argus/core"
	"argus/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// ResultCache stores analysis results keyed by indicator value. Cache
// failures are soft: a broken cache degrades to recomputing, never to a
// failed analysis.
type ResultCache interface {
	Get(ctx context.Context, value string) (*core.AnalysisResult, bool)
	Set(ctx context.Context, value string, result *core.AnalysisResult)
	Stats(ctx context.Context) map[string]interface{}
}

// redisResultCache adapts core.RedisCache to the ResultCache interface.
type redisResultCache struct {
	cache  *core.RedisCache
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewRedisResultCache wraps a Redis cache with the analysis TTL.
func NewRedisResultCache(cache *core.RedisCache, ttl time.Duration, logger *zap.SugaredLogger) ResultCache {
	return &redisResultCache{cache: cache, ttl: ttl, logger: logger}
}

func (c *redisResultCache) Get(ctx context.Context, value string) (*core.AnalysisResult, bool) {
	var result core.AnalysisResult
	found, err := c.cache.Get(ctx, core.IOCCacheKey(value), &result)
	if err != nil || !found {
		return nil, false
	}
	return &result, true
}

func (c *redisResultCache) Set(ctx context.Context, value string, result *core.AnalysisResult) {
	if err := c.cache.Set(ctx, core.IOCCacheKey(value), result, c.ttl); err != nil {
		c.logger.Warnf("Failed to cache analysis result: %v", err)
	}
}

func (c *redisResultCache) Stats(ctx context.Context) map[string]interface{} {
	stats, err := c.cache.Stats(ctx)
	if err != nil {
		c.logger.Warnf("Failed to read cache stats: %v", err)
		return map[string]interface{}{"backend": "redis", "error": "unavailable"}
	}
	return stats
}

// lruResultCache is the in-process fallback used when Redis is not
// configured or unreachable at startup.
type lruResultCache struct {
	lru *expirable.LRU[string, *core.AnalysisResult]
}

// NewLRUResultCache creates an expiring in-memory cache.
func NewLRUResultCache(size int, ttl time.Duration) ResultCache {
	if size < 1 {
		size = 1024
	}
	return &lruResultCache{
		lru: expirable.NewLRU[string, *core.AnalysisResult](size, nil, ttl),
	}
}

func (c *lruResultCache) Get(_ context.Context, value string) (*core.AnalysisResult, bool) {
	result, ok := c.lru.Get(value)
	if !ok {
		metrics.CacheMisses.WithLabelValues("lru").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("lru").Inc()
	return result, true
}

func (c *lruResultCache) Set(_ context.Context, value string, result *core.AnalysisResult) {
	c.lru.Add(value, result)
}

func (c *lruResultCache) Stats(_ context.Context) map[string]interface{} {
	return map[string]interface{}{
		"backend": "lru",
		"keys":    c.lru.Len(),
	}
}
