package repository

import "context"

// KeyValueStore is the device-local durable store.
type KeyValueStore interface {
	// Get returns ok=false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
