// Package cache stores rendered artifacts (SVG documents, layout results)
// keyed by content hash, so repeated renders of an unchanged scene are
// served without recomputation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiration.
// Get reports a miss through the boolean, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
