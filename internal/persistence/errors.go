package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested key does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrInvalidKey is returned when an empty key is passed to a store.
	ErrInvalidKey = errors.New("persistence: invalid key")
)
