package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlobCache stores rendered documents (sitemap XML, listing payloads) by key
type BlobCache interface {
	// Get returns the cached bytes and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisBlobCache implements BlobCache on Redis strings
type RedisBlobCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisBlobCache creates a blob cache; every key is stored under keyPrefix
func NewRedisBlobCache(client *redis.Client, keyPrefix string) *RedisBlobCache {
	if keyPrefix == "" {
		keyPrefix = "blob:"
	}
	return &RedisBlobCache{client: client, keyPrefix: keyPrefix}
}

// Get implements BlobCache
func (c *RedisBlobCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements BlobCache
func (c *RedisBlobCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// DeletePrefix scans for matching keys and deletes them in batches
func (c *RedisBlobCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}
	return nil
}

// InMemoryBlobCache implements BlobCache in process memory
type InMemoryBlobCache struct {
	mu      sync.RWMutex
	entries map[string]cartEntry
	janitor *janitor
}

// NewInMemoryBlobCache creates an in-memory blob cache
func NewInMemoryBlobCache() *InMemoryBlobCache {
	c := &InMemoryBlobCache{entries: make(map[string]cartEntry)}
	c.janitor = startJanitor(cleanupInterval, c.cleanup)
	return c
}

// Get implements BlobCache
func (c *InMemoryBlobCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !time.Now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]byte(nil), e.raw...), true, nil
}

// Set implements BlobCache
func (c *InMemoryBlobCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cartEntry{raw: append([]byte(nil), data...), expiresAt: time.Now().Add(ttl)}
	return nil
}

// DeletePrefix implements BlobCache
func (c *InMemoryBlobCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryBlobCache) Close() error {
	c.janitor.stop()
	return nil
}

func (c *InMemoryBlobCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var (
	_ BlobCache = (*RedisBlobCache)(nil)
	_ BlobCache = (*InMemoryBlobCache)(nil)
)
