package repositories

import "context"

// KeyValueStore is the local durable storage of the form session.
type KeyValueStore interface {
	// Get returns domain.ErrNotFound when the key was never written.
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
