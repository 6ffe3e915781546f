package sessionstore

import "context"

// Store defines session-scoped key-value persistence.
type Store interface {
	// Get retrieves the value for key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key in the store.
	Clear(ctx context.Context) error
}
