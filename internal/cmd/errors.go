package cmd

import (
	"errors"

	"github.com/rigforge/rigforge/internal/core/builder"
	oerrors "github.com/rigforge/rigforge/internal/errors"
)

// asExitError resolves err to its phase-keyed exit code via builder.ExitCode,
// unless err already carries an explicit code.
func asExitError(err error) error {
	if err == nil {
		return nil
	}
	var existing *oerrors.ExitError
	if errors.As(err, &existing) {
		return existing
	}
	return oerrors.NewExitError(builder.ExitCode(err), err)
}
