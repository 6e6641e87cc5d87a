package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Aman-CERP/ragkit/entities"
	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/ragerr"
)

func cacheKey(query string, limit int, f filter.Filter) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%+v", query, limit, f)
	return hex.EncodeToString(h.Sum(nil))
}

// LRUQueryCache decorates a Retriever with an in-process LRU cache of
// (query, limit, filter) to result lists.
type LRUQueryCache struct {
	base Retriever
	ttl  time.Duration
	lru  *lru.Cache[string, cachedEntry]
}

type cachedEntry struct {
	results   []entities.RetrievalResult
	expiresAt time.Time
}

// NewLRUQueryCache wraps base with an LRU cache of the given capacity
// and per-entry TTL. A non-positive ttl disables expiry.
func NewLRUQueryCache(base Retriever, capacity int, ttl time.Duration) (*LRUQueryCache, error) {
	if capacity <= 0 {
		capacity = 256
	}
	cache, err := lru.New[string, cachedEntry](capacity)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindInvalidConfiguration, "create query cache", err)
	}
	return &LRUQueryCache{base: base, ttl: ttl, lru: cache}, nil
}

var _ Retriever = (*LRUQueryCache)(nil)

func (c *LRUQueryCache) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	key := cacheKey(query, limit, f)
	if entry, ok := c.lru.Get(key); ok {
		if c.ttl <= 0 || time.Now().Before(entry.expiresAt) {
			return entry.results, nil
		}
		c.lru.Remove(key)
	}

	results, err := c.base.Retrieve(ctx, query, limit, f)
	if err != nil {
		return nil, err
	}

	entry := cachedEntry{results: results}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.lru.Add(key, entry)
	return results, nil
}

// RedisQueryCache decorates a Retriever with a shared Redis cache of
// (query, limit, filter) to result lists, for sharing across process
// instances.
type RedisQueryCache struct {
	base   Retriever
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisQueryCacheOption configures a RedisQueryCache.
type RedisQueryCacheOption func(*RedisQueryCache)

// WithKeyPrefix sets the Redis key prefix (default "ragkit:query:").
func WithKeyPrefix(prefix string) RedisQueryCacheOption {
	return func(c *RedisQueryCache) { c.prefix = prefix }
}

// NewRedisQueryCache wraps base with a Redis-backed cache. A
// non-positive ttl disables expiry (entries live until evicted).
func NewRedisQueryCache(base Retriever, client *redis.Client, ttl time.Duration, opts ...RedisQueryCacheOption) *RedisQueryCache {
	c := &RedisQueryCache{base: base, client: client, ttl: ttl, prefix: "ragkit:query:"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Retriever = (*RedisQueryCache)(nil)

func (c *RedisQueryCache) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]entities.RetrievalResult, error) {
	key := c.prefix + cacheKey(query, limit, f)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var results []entities.RetrievalResult
		if jsonErr := json.Unmarshal(raw, &results); jsonErr == nil {
			return results, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, ragerr.Wrap(ragerr.KindRetrievalFailed, "read query cache", err)
	}

	results, err := c.base.Retrieve(ctx, query, limit, f)
	if err != nil {
		return nil, err
	}

	if raw, jsonErr := json.Marshal(results); jsonErr == nil {
		c.client.Set(ctx, key, raw, c.ttl)
	}
	return results, nil
}
