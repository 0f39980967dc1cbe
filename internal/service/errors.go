package service

import "errors"

var (
	// ErrNotFound covers members that do not exist as well as members
	// owned by a different user; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks client input rejected before any transaction
	// opens.
	ErrInvalidInput = errors.New("invalid input")
)
