package domain

import "errors"

var (
	// ErrNotFound is wrapped by every aggregate's not-found error.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable marks infrastructure failures of a backing store.
	// Callers may retry; it is never a validation outcome.
	ErrStoreUnavailable = errors.New("store unavailable")
)
