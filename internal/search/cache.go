package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "systems-api:search:"

// cacheClient is the slice of the go-redis API the cache uses.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedSearcher keeps successful results in Redis for ttl. "No match"
// outcomes are not cached since the consumer may add the system any time.
// Cache failures are logged and the search runs uncached.
type CachedSearcher struct {
	next   Searcher
	client cacheClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSearcher returns next unchanged when client is nil.
func NewCachedSearcher(next Searcher, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) Searcher {
	if client == nil {
		return next
	}
	return newCachedSearcher(next, client, ttl, logger)
}

func newCachedSearcher(next Searcher, client cacheClient, ttl time.Duration, logger *slog.Logger) *CachedSearcher {
	logger.Debug("Initializing search cache", "ttl", ttl)

	return &CachedSearcher{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "search_cache"),
	}
}

func (c *CachedSearcher) Search(ctx context.Context, q Query) (*Result, error) {
	if !q.Present {
		return c.next.Search(ctx, q)
	}

	logger := c.logger.With("operation", "search")
	key := cacheKey(q)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Result
		if err := json.Unmarshal(raw, &cached); err == nil {
			logger.Debug("Cache hit", "key", key)
			return &cached, nil
		}
		logger.Warn("Discarding unreadable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		logger.Warn("Cache read failed", "key", key, "error", err)
	}

	result, err := c.next.Search(ctx, q)
	if err != nil || !result.Found() {
		return result, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		logger.Warn("Failed to encode result for cache", "error", err)
		return result, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("Cache write failed", "key", key, "error", err)
	}

	return result, nil
}

func cacheKey(q Query) string {
	mode := "full"
	if q.Fast {
		mode = "fast"
	}
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, mode, q.Name)
}
