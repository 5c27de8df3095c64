package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrNoToken  = errors.New("no stored token")
)

// ValidationError is a pre-flight failure resolved before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
