package core

import "errors"

// Error kinds surfaced across package boundaries. Storage and service
// failures wrap one of these so callers can classify them with
// errors.Is without depending on concrete implementations.
var (
	// ErrNotFound means a referenced record does not exist. An empty
	// result set (zero expenses in a window) is not ErrNotFound.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means the caller violated a contract, for
	// example a malformed owner id or a negative budget.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage means an underlying store read or write failed. The
	// failure is fatal for the request; nothing retries it.
	ErrStorage = errors.New("storage error")

	// ErrConflict means a uniqueness constraint was violated, for
	// example a duplicate category name or email.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized means the request lacks a valid identity.
	ErrUnauthorized = errors.New("unauthorized")
)
