package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/statyba/storefront/internal/domain/shared"
)

// DefaultIdempotencyPrefix namespaces checkout idempotency keys
const DefaultIdempotencyPrefix = "checkout:idempotency:"

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// Keys are shared by every server instance, so a retried checkout that lands
// on another node still finds the first order.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	// pending is the placeholder value MarkProcessed writes before Remember
	pending string
}

// NewRedisIdempotencyStore creates a store on an existing Redis client
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
		pending:   "1",
	}
}

// MarkProcessed claims key with a TTL.
// Returns true if the key was newly claimed, false if it already existed.
// SETNX makes the claim atomic across instances.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, s.pending, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark key as processed: %w", err)
	}
	return ok, nil
}

// IsProcessed checks if key has been claimed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Remember stores value against key, replacing the claim placeholder
func (s *RedisIdempotencyStore) Remember(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency result: %w", err)
	}
	return nil
}

// Recall returns the value remembered for key. A claimed key without a
// remembered value, or an unknown key, yields "".
func (s *RedisIdempotencyStore) Recall(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read idempotency result: %w", err)
	}
	if v == s.pending {
		return "", nil
	}
	return v, nil
}

// Forget drops a claim so a failed operation can be retried with the same key
func (s *RedisIdempotencyStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to drop idempotency key: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by whoever created it
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
