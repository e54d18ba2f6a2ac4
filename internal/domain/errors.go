package domain

import "errors"

// Error taxonomy surfaced to the transport layer, which maps each kind to an
// HTTP status. Storage failures are wrapped with %w and fall through to 500.
var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden marks a caller lacking the admin role on creation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks a lookup or dismissal target that does not exist.
	ErrNotFound = errors.New("not found")
)
