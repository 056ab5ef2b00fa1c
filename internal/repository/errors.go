package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict is returned when an optimistic update lost the race
	// against a concurrent writer. Callers re-read and retry.
	ErrVersionConflict = errors.New("entity version conflict")
)
