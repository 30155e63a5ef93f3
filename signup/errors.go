package signup

import (
	"errors"
	"fmt"
)

// ErrInvalidDraft matches every *ValidationError with errors.Is.
var ErrInvalidDraft = errors.New("invalid signup draft")

// ValidationError names the first field of a draft that failed its rule.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDraft
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
