package store

import "context"

// Store is the key-value capability captured parameters are persisted
// through. Both durable (SQLite) and session (in-memory) modes implement
// it, so the capture and read paths never know which one they run against.
// Tests substitute the in-memory implementation.
type Store interface {
	// Get returns the value stored under key. The boolean reports
	// whether the key was present; an absent key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the value stored under key.
	// Deleting an absent key is a no-op, not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
