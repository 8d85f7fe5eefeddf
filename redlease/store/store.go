package store

import (
	"context"
	"time"
)

// Store is the set of primitives the lease engine requires from a
// key-value backend. CompareDelete and CompareExpire must be atomic on
// the store side: a single round trip with no client-observable
// intermediate state.
type Store interface {
	// TrySet sets key=value with the given expiry only if the key is
	// absent. It returns true iff the set happened.
	TrySet(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareDelete deletes key iff its current value equals expected.
	// It returns true iff the key was deleted.
	CompareDelete(ctx context.Context, key, expected string) (bool, error)

	// CompareExpire resets key's expiry iff its current value equals
	// expected. It returns true iff the expiry was reset.
	CompareExpire(ctx context.Context, key, expected string, ttl time.Duration) (bool, error)

	// Get returns the current value of key, with ok reporting whether
	// the key exists. It is not used on the locking hot path.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}
