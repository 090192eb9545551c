package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by plan stores when the requested plan does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError describes a caller-correctable problem with an input.
// The engine reports these immediately and performs no partial computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
