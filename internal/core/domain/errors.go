package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("campaign not found")
	ErrInvalidState = errors.New("invalid campaign state")
	ErrForbidden    = errors.New("forbidden")
	// ErrNotEligible means a click was not billed. It is never shown to
	// the viewer.
	ErrNotEligible = errors.New("campaign not eligible for charge")
)

// ValidationError reports a rejected campaign submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
