// Package common defines shared sentinel errors used across AccountKeeper
// components. Callers should use errors.Is to match these values; the
// concrete backend cause, when relevant, stays attached via %w wrapping.
package common

import "errors"

var (
	// Validation errors (bad caller input, never retried).
	ErrInvalidArgument = errors.New("invalid argument")

	// Repository-level errors.
	ErrDuplicate       = errors.New("duplicate entity")
	ErrOperationFailed = errors.New("operation failed")

	// Service-level errors exposed across the component boundary.
	ErrAccountExists = errors.New("account already exists")
	ErrSessionCreate = errors.New("session creation failed")
)
