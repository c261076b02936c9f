package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrReadingNotFound  = fmt.Errorf("%w: energy reading", ErrNotFound)
	ErrBuildingNotFound = fmt.Errorf("%w: building", ErrNotFound)
	ErrAlertNotFound    = fmt.Errorf("%w: alert", ErrNotFound)

	// Statistical errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDegenerateInput  = errors.New("degenerate input: zero variance in x")
	ErrUndefined        = errors.New("undefined result: zero variance")

	// Configuration errors
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

func NewLengthMismatchError(a, b int) error {
	return fmt.Errorf("%w: series lengths differ (%d != %d)", ErrInvalidInput, a, b)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUndefinedResult reports whether err marks a mathematically undefined value
// (zero variance in either series, or in x for a regression).
func IsUndefinedResult(err error) bool {
	return errors.Is(err, ErrDegenerateInput) || errors.Is(err, ErrUndefined)
}

// IsStatisticalError reports whether err is one of the statistics helper conditions.
func IsStatisticalError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidInput) ||
		IsUndefinedResult(err)
}

// Reason returns a short machine-friendly tag for a statistical error, used
// when a computed value is reported as null.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrDegenerateInput):
		return "degenerate_input"
	case errors.Is(err, ErrUndefined):
		return "undefined"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
