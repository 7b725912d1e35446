package repositories

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist for the
	// client making the request.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the write would violate a uniqueness
	// constraint, such as reusing a job id.
	ErrConflict = errors.New("conflict")
)
