// Package errors provides sentinel errors and structured error details for rigforge.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for known conditions. Concrete error types in
// internal/core/... wrap one of these via Unwrap so callers can use
// errors.Is against a stable category instead of a concrete type.
var (
	// ErrConfiguration indicates a rig file is missing, unparsable, or
	// missing a required key.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation indicates a rig or data file failed schema validation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a referenced file, archetype, or component type
	// could not be located.
	ErrNotFound = errors.New("not found")

	// ErrPermission indicates a file could not be read or written due to
	// permissions.
	ErrPermission = errors.New("permission denied")

	// ErrComponentPhase indicates a component phase raised during a build.
	ErrComponentPhase = errors.New("component phase error")

	// ErrPublish indicates the output path was unwritable or the scene
	// save collaborator failed.
	ErrPublish = errors.New("publish error")

	// ErrUnknownDataType indicates a merge or load requested a data kind
	// tag that is not registered.
	ErrUnknownDataType = errors.New("unknown data type")

	// ErrInvalidMergeMethod indicates a save method outside
	// {merge, new, overwrite}.
	ErrInvalidMergeMethod = errors.New("invalid merge method")

	// ErrMissingTargetFile indicates method new or overwrite was used
	// without a fileName.
	ErrMissingTargetFile = errors.New("missing target file")

	// ErrInvalidLayeredPlan indicates a layered save plan entry is missing
	// one of changed, added, or removed, or the plan is empty.
	ErrInvalidLayeredPlan = errors.New("invalid layered plan")

	// ErrDataFileTypeMismatch indicates a file's declared dataType is
	// neither the requested kind nor AbstractData.
	ErrDataFileTypeMismatch = errors.New("data file type mismatch")

	// ErrUnresolvedRigParent indicates CONNECT could not find the named
	// rigParent handle. Non-fatal: callers log this as a warning.
	ErrUnresolvedRigParent = errors.New("unresolved rig parent")
)

// DetailError captures structured error information for CLI presentation:
// a category, a message, an optional location/field, free-form context,
// an actionable hint, and the wrapped cause.
type DetailError struct {
	Type     string
	Message  string
	Location string
	Field    string
	Context  map[string]string
	Hint     string
	Cause    error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	if e.Field != "" {
		b.WriteString("  Field: ")
		b.WriteString(e.Field)
		b.WriteString("\n")
	}
	for k, v := range e.Context {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the wrapped sentinel, so errors.Is(err, ErrConfiguration)
// etc. works through a DetailError.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a configuration error with details.
func NewConfigurationError(message, location, hint string) error {
	return &DetailError{
		Type:     "configuration error",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrConfiguration,
	}
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, field, hint string) error {
	return &DetailError{
		Type:     "validation failed",
		Message:  message,
		Location: location,
		Field:    field,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// Wrap wraps an error with a sentinel error type, preserving message context.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
