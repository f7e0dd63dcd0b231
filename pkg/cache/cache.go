// Package cache stores serialized resolution results.
//
// Resolution itself is cheap; what the cache saves is manifest decoding,
// validation and the per-component passes of a hosted resolution, which the
// CLI and HTTP API repeat for identical inputs. Backends:
//
//   - [NullCache] stores nothing (--no-cache, tests).
//   - [FileCache] keeps entries under the XDG cache directory (CLI default).
//   - [RedisCache] shares entries between API replicas.
//
// Keys come from a [Keyer] and are derived from the manifest bytes and every
// input that influences the chain, so a cached entry can never be served for
// a different platform or fallback mode.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the lifetime of a cached result when none is configured.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}
