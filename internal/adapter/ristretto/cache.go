// Package ristretto implements the cache port with an in-process
// ristretto cache, used as the read-through layer in front of the
// decision state store.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is an in-process cache for serialized run and bug state.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache bounded by maxCostBytes of stored value bytes.
func New(maxCostBytes int64) (*Cache, error) {
	// Counter budget follows the ristretto guidance of ~10x the
	// expected item count; state blobs average around 1KB.
	counters := maxCostBytes / 1024 * 10
	if counters < 1024 {
		counters = 1024
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get retrieves a value. A miss is (nil, false, nil).
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a value with the given TTL. The cost charged is the
// combined key and value size in bytes.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(key)+len(value)), ttl)
	return nil
}

// Delete removes a value.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Wait blocks until buffered writes have been applied. Ristretto
// applies sets asynchronously; callers that need read-your-write
// visibility (tests, mostly) call this after Set.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Close releases the cache resources.
func (c *Cache) Close() {
	c.c.Close()
}
