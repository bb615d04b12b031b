//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	assert.NotEqual(t, ErrValidation, ErrConfiguration)
	assert.NotEqual(t, ErrValidation, ErrPermission)
	assert.NotEqual(t, ErrValidation, ErrNotFound)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "validation failed",
		Message:  "invalid value",
		Location: "/path/to/rig.json:42",
		Field:    "components[0].type",
		Context:  map[string]string{"rig": "biped"},
		Hint:     "use a registered module.ClassName tag",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: validation failed")
	assert.Contains(t, output, "Location: /path/to/rig.json:42")
	assert.Contains(t, output, "Field: components[0].type")
	assert.Contains(t, output, "rig: biped")
	assert.Contains(t, output, "invalid value")
	assert.Contains(t, output, "Hint: use a registered module.ClassName tag")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(
		"invalid value",
		"/path/to/rig.json:42",
		"components[0].type",
		"use a registered module.ClassName tag",
	)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "invalid value", detail.Message)
	assert.Equal(t, "/path/to/rig.json:42", detail.Location)
	assert.Equal(t, "components[0].type", detail.Field)
	assert.Equal(t, "use a registered module.ClassName tag", detail.Hint)
}

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("rig file not found", "/rigs/biped.json", "check the path")

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "schema check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "schema check failed")
}
