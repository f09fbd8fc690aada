// Package cache stores settled layouts and rendered artifacts.
//
// Laying out a family graph runs the force simulation to equilibrium, which
// is the expensive step of every render. The pipeline caches its result
// keyed by a hash of the graph and the layout inputs, and caches each
// rendered artifact keyed by the layout hash and the styling inputs, so a
// theme change re-renders without re-simulating.
//
// Backends:
//   - [NewFileCache]: JSON files under a directory, for the CLI
//   - [NewRedisCache]: a Redis server, for the HTTP server
//   - [NewNullCache]: stores nothing
//
// [Instrument] wraps any backend so hits, misses and writes reach the cache
// hooks in package observability.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. hit is false for a missing or expired
	// entry; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// GetJSON decodes the value for key into a T. It returns [ErrCacheMiss] when
// the key is absent or the stored value no longer decodes.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var v T
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if !hit {
		return v, ErrCacheMiss
	}
	if err := json.Unmarshal(data, &v); err != nil {
		_ = c.Delete(ctx, key)
		return v, ErrCacheMiss
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
