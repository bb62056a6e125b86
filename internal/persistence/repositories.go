package persistence

import "context"

// KVStore is the durable string key-value store that backs the local session.
//
// Implementations must be safe for concurrent use. Get reports ErrNotFound when
// the key has never been written or has been deleted.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes every listed key. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
}
