package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "thinktank:advisor:"

// CachedAdvisor wraps an Advisor with a Redis answer cache. Identical
// prompts within the TTL are served from Redis without touching the
// provider. Cache failures fall through to the inner advisor.
type CachedAdvisor struct {
	inner  Advisor
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedAdvisor creates a caching wrapper around inner.
func NewCachedAdvisor(inner Advisor, redisURL string, ttl time.Duration, logger *zap.Logger) (*CachedAdvisor, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedAdvisor{inner: inner, rdb: rdb, ttl: ttl, logger: logger}, nil
}

func (c *CachedAdvisor) ID() string { return c.inner.ID() }

// Ask checks the cache first, then delegates and stores the answer.
func (c *CachedAdvisor) Ask(ctx context.Context, prompt string, maxTokens int, temperature float64) (*Answer, error) {
	key := cacheKey(prompt, maxTokens, temperature)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var ans Answer
		if json.Unmarshal(data, &ans) == nil {
			c.logger.Debug("advisor cache hit", zap.String("key", key))
			return &ans, nil
		}
	}

	ans, err := c.inner.Ask(ctx, prompt, maxTokens, temperature)
	if err != nil {
		return nil, err
	}

	if data, mErr := json.Marshal(ans); mErr == nil {
		if sErr := c.rdb.Set(ctx, key, data, c.ttl).Err(); sErr != nil {
			c.logger.Warn("advisor cache store failed", zap.Error(sErr))
		}
	}
	return ans, nil
}

// Close releases the Redis connection.
func (c *CachedAdvisor) Close() error { return c.rdb.Close() }

func cacheKey(prompt string, maxTokens int, temperature float64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%.2f", prompt, maxTokens, temperature)))
	return cacheKeyPrefix + hex.EncodeToString(h[:16])
}
