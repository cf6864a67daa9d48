package models

import "errors"

// Sentinel errors shared across services. All are recoverable; a failed
// operation never takes the service down for other entities.
var (
	ErrNotFound              = errors.New("not found")
	ErrSessionFull           = errors.New("session at capacity")
	ErrDuplicateRegistration = errors.New("customer already registered for session")
	ErrInvalidSegment        = errors.New("customer segment not eligible")
	ErrInvalidRange          = errors.New("invalid time range")
	ErrAlreadyCompleted      = errors.New("already completed")
)
