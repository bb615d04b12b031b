package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rigforge/rigforge/internal/core/builder"
	oerrors "github.com/rigforge/rigforge/internal/errors"
)

func TestAsExitError_Nil(t *testing.T) {
	assert.Nil(t, asExitError(nil))
}

func TestAsExitError_PreservesExisting(t *testing.T) {
	existing := oerrors.NewExitError(7, errors.New("already tagged"))
	got := asExitError(existing)

	var exitErr *oerrors.ExitError
	assert.True(t, errors.As(got, &exitErr))
	assert.Equal(t, 7, exitErr.Code)
}

func TestAsExitError_WrapsPlainError(t *testing.T) {
	err := oerrors.NewConfigurationError("bad rig file", "rig.cue", "check the file syntax")
	got := asExitError(err)

	var exitErr *oerrors.ExitError
	assert.True(t, errors.As(got, &exitErr))
	assert.Equal(t, builder.ExitCode(err), exitErr.Code)
}
