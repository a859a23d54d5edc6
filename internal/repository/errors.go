package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a conditional update matched no row:
	// the entity moved out of the expected state under a racing writer.
	ErrConflict = errors.New("entity state conflict")
)
