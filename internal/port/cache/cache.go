// Package cache defines the port for the read-through state cache.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized feature and bug state keyed by subject.
// A miss is (nil, false, nil); the error return is reserved for
// backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
