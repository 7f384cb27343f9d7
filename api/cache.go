/*
cache.go - Time-bounded analysis report cache

PURPOSE:
  The analysis is deterministic given the same input snapshot, so repeated
  dashboard refreshes with identical query parameters can be served from a
  short-TTL cache keyed by (school, from, to). Two backends: an in-memory
  TTL map for single-node deployments and Redis when REDIS_ADDR is set.

KEYING:
  Query parameters are hashed into a stable key under a fixed prefix, so
  unbounded parameter combinations cannot grow unbounded key names.
*/
package api

import (
	"context"
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores serialized analysis responses for a bounded lifetime.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// cacheKey builds a stable key from the query parameters.
func cacheKey(schoolID, from, to string) string {
	sum := sha1.Sum([]byte(schoolID + "|" + from + "|" + to))
	return fmt.Sprintf("analysis:%x", sum[:])
}

// =============================================================================
// IN-MEMORY BACKEND
// =============================================================================

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded TTL map. Entries are reaped lazily on Get.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// =============================================================================
// REDIS BACKEND
// =============================================================================

// RedisCache backs the report cache with Redis for multi-node deployments.
// Failures degrade to cache misses; the analysis just recomputes.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.client.Set(ctx, key, value, ttl)
}

// NewCacheFromEnv picks the backend: Redis when an address is configured,
// the in-memory map otherwise.
func NewCacheFromEnv(redisAddr string) Cache {
	if redisAddr != "" {
		return NewRedisCache(redisAddr)
	}
	return NewMemoryCache()
}
