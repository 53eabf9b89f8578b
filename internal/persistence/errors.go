package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")

	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("persistence: duplicate record")

	// ErrConstraintViolation is returned when stored data would violate a
	// table constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")

	// ErrForeignKeyViolation is returned when a write references a missing
	// parent record.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")

	// ErrAtomicWrite is returned when a multi-record write could not be
	// committed as a unit. No partial state is left behind.
	ErrAtomicWrite = errors.New("persistence: atomic write failed")
)
