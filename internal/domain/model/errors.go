package model

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotAvailable is wrapped by every ConfigurationError.
	ErrModelNotAvailable = errors.New("model not available")

	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrArtifactsNotFound is returned by artifact stores that hold nothing.
	ErrArtifactsNotFound = errors.New("artifacts not found")

	// ErrInvalidRecord is returned when an incident record breaks an invariant.
	ErrInvalidRecord = errors.New("invalid incident record")
)

// ConfigurationError means the engine has no complete, consistent artifact
// set to predict with.
type ConfigurationError struct {
	Reason string
}

// NewConfigurationError creates a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return ErrModelNotAvailable.Error()
	}
	return ErrModelNotAvailable.Error() + ": " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return ErrModelNotAvailable }

// ValidationError reports a malformed client input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsConfigurationError reports whether err means the model is unavailable.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrModelNotAvailable)
}

// IsValidationError reports whether err is a client input error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
