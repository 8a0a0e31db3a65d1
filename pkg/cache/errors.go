package cache

import "errors"

// Sentinel errors for cache operations.
var (
	ErrNotFound  = errors.New("cache: entry not found")
	ErrClosed    = errors.New("cache: closed")
	ErrMarshal   = errors.New("cache: failed to marshal value")
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")

	ErrInvalidRedisURL  = errors.New("cache: invalid redis url")
	ErrRedisUnavailable = errors.New("cache: redis unavailable")
)
