package config

import (
	"errors"
	"fmt"

	"github.com/dshills/mentions/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrFileNotFound indicates a required configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrValidationFailed is matched by every ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError is returned for malformed configuration files.
type ParseError = loader.ParseError

// ValidationError describes an invalid setting.
type ValidationError struct {
	// Path is the setting path, e.g. "triggers[1].prefix".
	Path string
	// Message describes the problem.
	Message string
	// Value is the offending value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Path, e.Value, e.Message)
}

// Is allows errors.Is to match ValidationError with ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
