package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed keys (event IDs, checkout keys) to prevent duplicate processing
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Remember stores a value (usually a resulting aggregate ID) against the key
	Remember(ctx context.Context, key, value string, ttl time.Duration) error

	// Recall returns the value stored against the key, or "" if none
	Recall(ctx context.Context, key string) (string, error)
	// Forget drops a key so the operation can be retried
	Forget(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long processed keys are remembered
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
