package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint is violated,
	// e.g. signing up with an email that already has a credential.
	ErrDuplicate = errors.New("already exists")
)
