// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrPlanNotFound  = fmt.Errorf("trading plan: %w", ErrNotFound)
	ErrTradeNotFound = fmt.Errorf("trade: %w", ErrNotFound)
	ErrDatabase      = errors.New("database error")
	ErrConfigInvalid = errors.New("invalid configuration")
)

// StateError represents an illegal trade state transition.
type StateError struct {
	Action string // the transition that was attempted, e.g. "close"
	Status string // the trade's current status
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s trade in status %s: %s", e.Action, e.Status, e.Reason)
}

// NewStateError creates a new StateError.
func NewStateError(action, status, reason string) *StateError {
	return &StateError{Action: action, Status: status, Reason: reason}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsState reports whether err is a StateError.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
