// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument indicates input rejected by validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedUnit indicates a unit token outside the known set.
	ErrUnsupportedUnit = errors.New("unsupported unit")

	// ErrVariantsLocked indicates a variant change after the enrollment has started.
	ErrVariantsLocked = errors.New("variants locked: program already started")
)
