// Package cache stores computed layouts between runs.
//
// A [Cache] is a byte store keyed by strings; the pipeline serializes layout
// results to JSON and keys them with a [Keyer] so identical input never gets
// laid out twice. Three backends are provided:
//
//   - [NullCache] stores nothing (caching disabled)
//   - [FileCache] keeps entries under a directory, for CLI use
//   - [RedisCache] shares entries between server instances
//
// Keys are content hashes, so stale entries are simply never asked for
// again; TTLs only bound disk and memory use.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized results.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
