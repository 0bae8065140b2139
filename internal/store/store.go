// Package store defines the key-value store capability consumed by the
// cache and citation store. The interface mirrors the small slice of Redis
// the application actually uses, so providers other than Redis (notably the
// in-memory one used in tests) stay easy to write.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound signals an absent key on Get. Absence is an expected
// outcome, not a store failure.
var ErrKeyNotFound = errors.New("key not found")

// Store is the common interface for a key-value store provider. Values are
// opaque bytes; expiry is enforced by the store, not the caller.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key. A ttl > 0 arms store-side expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// SAdd adds member to the set at key, creating the set if needed.
	SAdd(ctx context.Context, key, member string) error
	// SRem removes member from the set at key. Removing a non-member is
	// not an error.
	SRem(ctx context.Context, key, member string) error
	// SMembers returns all members of the set at key. An absent set is an
	// empty result.
	SMembers(ctx context.Context, key string) ([]string, error)
	// Expire (re)arms the ttl on key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping probes connectivity.
	Ping(ctx context.Context) error
	// Close releases the underlying connection resources.
	Close() error
}
