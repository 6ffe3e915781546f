package sessionstore

import "errors"

var (
	// ErrKeyNotFound indicates the requested key is not present in the store.
	ErrKeyNotFound = errors.New("sessionstore: key not found")

	// ErrFailedToParseRedisURL indicates an invalid Redis connection string.
	ErrFailedToParseRedisURL = errors.New("sessionstore: failed to parse redis connection string")

	// ErrRedisNotReady indicates the Redis server did not respond to ping
	// within the configured retry budget.
	ErrRedisNotReady = errors.New("sessionstore: redis is not ready")
)
