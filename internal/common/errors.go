// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Preprocessing errors.
	ErrMissingSegment = errors.New("missing waveform segment")
	ErrShapeMismatch  = errors.New("segment shape mismatch")

	// Request-time errors.
	ErrTraceLoad                 = errors.New("trace load failure")
	ErrClassificationUnavailable = errors.New("classification service unavailable")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
