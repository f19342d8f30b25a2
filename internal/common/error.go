// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors (malformed request shape, batch size exceeded,
	// storage mode mismatch). Never partially processed.
	ErrValidation         = errors.New("validation error")
	ErrBatchSizeExceeded  = errors.New("batch size exceeded")
	ErrStorageModeInvalid = errors.New("event storage mode does not support this operation")

	// ErrProvenanceMismatch marks an object-store confirm whose stored
	// metadata does not match the authenticated event/guest.
	ErrProvenanceMismatch = errors.New("object metadata does not match event or guest")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
