package model

import "errors"

var (
	// ErrValidation marks malformed rule or task input, rejected before any
	// state mutation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a reference to a nonexistent rule or task id.
	ErrNotFound = errors.New("not found")
)
