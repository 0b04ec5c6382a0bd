// Package cache stores solved tours so that a reproducible run (same
// instance, parameters and seed) can be answered without searching again.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps one JSON file per entry under the user cache dir
//   - [RedisCache] shares entries between machines through Redis
//   - [NullCache] stores nothing (--no-cache)
//
// Keys come from a [Keyer] so the pipeline never builds key strings itself.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a solution stays cached.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
