// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/transport layers.
var (
	// ErrInvalidInput indicates a malformed or out-of-range parameter or body field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZero indicates a division whose divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity with the same key is already stored.
	ErrAlreadyExists = errors.New("already exists")
)
