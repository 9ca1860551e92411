package kvstore

import "context"

// Store is a durable key-value slot.
//
// Values are opaque byte strings; a Put fully replaces the previous value of
// the key. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}
