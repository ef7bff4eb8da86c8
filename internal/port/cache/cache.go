// Package cache defines the port interface for caching rendered-post inputs.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-valued key store with per-entry expiry. A miss is reported
// through the bool, never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
