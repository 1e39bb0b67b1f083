package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"mediaconv/internal/logger"
	"mediaconv/internal/redis"
)

const summaryKeyPrefix = "summary:"

// Cache is the subset of the redis client the summary cache needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type keyedSummarizer interface {
	CacheKeyPrefix() string
}

type cachedSummarizer struct {
	next   Summarizer
	cache  Cache
	prefix string
	ttl    time.Duration
}

// WithCache memoizes summaries in cache. Cache failures are logged and the
// wrapped summarizer is called directly.
func WithCache(next Summarizer, cache Cache, ttl time.Duration) Summarizer {
	if cache == nil {
		return next
	}
	prefix := ""
	if k, ok := next.(keyedSummarizer); ok {
		prefix = k.CacheKeyPrefix()
	}
	return &cachedSummarizer{next: next, cache: cache, prefix: prefix, ttl: ttl}
}

func (c *cachedSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	log := logger.FromContext(ctx)
	key := summaryCacheKey(c.prefix, text)

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		log.Debug("summary cache hit", "key", key)
		return cached, nil
	case !errors.Is(err, redis.ErrCacheMiss):
		log.Warn("summary cache read failed", "error", err)
	}

	summary, err := c.next.Summarize(ctx, text)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, summary, c.ttl); err != nil {
		log.Warn("summary cache write failed", "error", err)
	}
	return summary, nil
}

func summaryCacheKey(prefix, text string) string {
	sum := sha256.Sum256([]byte(prefix + "|" + text))
	return summaryKeyPrefix + hex.EncodeToString(sum[:])
}
