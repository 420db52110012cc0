// Package cache provides the shared key-value cache used for policy results,
// flow plans and the version check. Keys are namespaced by their producers
// (policy_, flow_, signet_latest_version); prefix enumeration and bulk
// deletion exist so the admin surface can count and clear a namespace without
// knowing who wrote the entries.
package cache

import (
	"context"
	"time"
)

// Cache is the contract stores and services depend on. Implementations return
// sentinel.ErrNotFound (wrapped) for missing keys.
type Cache interface {
	// Get returns the value for key.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete removes a single key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys enumerates all keys beginning with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// DeleteMany removes the given keys and reports how many existed.
	DeleteMany(ctx context.Context, keys []string) (int64, error)
	// CountPrefix reports how many keys begin with prefix.
	CountPrefix(ctx context.Context, prefix string) (int, error)
}
