// Package archcache provides the read surface's response cache: a generic,
// JSON-encoding, TTL-bound Redis cache namespaced by tenant, so a repeated
// architecture/issues/workflows query doesn't re-run graph reconstruction
// or reasoning on every request (spec §4.G).
package archcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned by Get when key is absent or expired.
var ErrCacheMiss = errors.New("archcache: cache miss")

// Cache is a type-safe, namespaced, TTL-bound cache over a single Redis
// client. Namespace and tenant together form the key prefix, so
// InvalidateTenant can drop everything a tenant owns without touching
// other tenants' entries.
type Cache[T any] struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	log       *logrus.Logger
}

// NewCache constructs a Cache for namespace (e.g. "architecture", "issues",
// "workflows") with the given TTL.
func NewCache[T any](client *redis.Client, namespace string, ttl time.Duration, log *logrus.Logger) *Cache[T] {
	return &Cache[T]{client: client, namespace: namespace, ttl: ttl, log: log}
}

func (c *Cache[T]) key(tenantID, key string) string {
	return fmt.Sprintf("archlens:%s:%s:%s", c.namespace, tenantID, key)
}

// Get retrieves and decodes the cached value for (tenantID, key).
func (c *Cache[T]) Get(ctx context.Context, tenantID, key string) (*T, error) {
	raw, err := c.client.Get(ctx, c.key(tenantID, key)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("archcache get: %w", err)
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("archcache decode: %w", err)
	}
	return &value, nil
}

// Set encodes and stores value for (tenantID, key) with the cache's TTL.
func (c *Cache[T]) Set(ctx context.Context, tenantID, key string, value *T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("archcache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(tenantID, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("archcache set: %w", err)
	}
	return nil
}

// InvalidateTenant removes every cached entry this namespace holds for
// tenantID. The ingestion front does not call it: after new spans are
// accepted for a tenant, its cached views stay in place until their TTL
// expires.
func (c *Cache[T]) InvalidateTenant(ctx context.Context, tenantID string) error {
	pattern := fmt.Sprintf("archlens:%s:%s:*", c.namespace, tenantID)

	var cursor uint64
	var keys []string
	for {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("archcache scan: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("archcache invalidate: %w", err)
	}
	if c.log != nil {
		c.log.WithFields(logrus.Fields{"tenant": tenantID, "namespace": c.namespace, "keys": len(keys)}).Debug("invalidated cache entries")
	}
	return nil
}
