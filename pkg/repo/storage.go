package repo

import (
	"context"
)

// Storage defines the contract for content persistence backends.
// Keys are "/" separated paths. Implementations must be safe for concurrent use.
type Storage interface {
	// Write stores data with the given key.
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data for the given key.
	// Returns os.ErrNotExist if the key does not exist.
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys below the given prefix, recursively, sorted alphabetically ascending.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data for the given key.
	// Returns nil if the key does not exist (idempotent).
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backend is reachable without touching any keys.
	Ping(ctx context.Context) error

	// Close releases any resources held by the storage backend.
	Close() error
}
