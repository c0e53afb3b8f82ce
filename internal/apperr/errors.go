// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound marks a lookup for an id with no live note. Absence
	// is a normal outcome, not a fault; callers test with errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFormat marks an import document whose top-level shape
	// is wrong or that cannot be parsed at all.
	ErrInvalidFormat = errors.New("invalid import format")
)
