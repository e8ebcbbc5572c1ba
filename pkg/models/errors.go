package models

import "errors"

// Error kinds surfaced by the marketplace core. Repositories wrap these
// with %w so callers can classify failures with errors.Is; none of them
// is retried internally, they are business-rule rejections.
var (
	// ErrNotFound means a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller lacks the specific relationship the
	// operation requires (not merely unauthenticated).
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState means the operation was attempted in a status that
	// forbids it.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict means a uniqueness constraint was violated, e.g. a
	// duplicate inquiry or a second review for the same offer.
	ErrConflict = errors.New("already exists")
	// ErrValidation means a field-level constraint failed, e.g. the
	// rating range.
	ErrValidation = errors.New("validation failed")
)
