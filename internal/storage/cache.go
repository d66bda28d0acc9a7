package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// URLCache remembers the published document URL for recently processed
// videos so repeat requests skip the acquisition pipeline.
type URLCache interface {
	// Get returns the cached document URL for videoID, or ("", false) on a
	// miss.
	Get(ctx context.Context, videoID string) (string, bool)

	// Set records the document URL for videoID.
	Set(ctx context.Context, videoID string, contentURL string)
}

// RedisCache is a URLCache backed by Redis with a fixed TTL. Cache errors
// degrade to misses so Redis outages never fail a request.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache around an existing Redis client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(videoID string) string {
	return fmt.Sprintf("ytdoc:url:%s", videoID)
}

func (c *RedisCache) Get(ctx context.Context, videoID string) (string, bool) {
	value, err := c.client.Get(ctx, cacheKey(videoID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("cache get failed",
				zap.String("videoId", videoID),
				zap.Error(err),
			)
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, videoID string, contentURL string) {
	if err := c.client.Set(ctx, cacheKey(videoID), contentURL, c.ttl).Err(); err != nil {
		logger.Log.Warn("cache set failed",
			zap.String("videoId", videoID),
			zap.Error(err),
		)
	}
}

// NopCache is used when Redis is not configured; every lookup misses.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool) { return "", false }
func (NopCache) Set(context.Context, string, string)        {}
