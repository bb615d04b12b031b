package builder

import (
	"errors"
	"fmt"

	oerrors "github.com/rigforge/rigforge/internal/errors"
)

// RenderError is the shape every typed error below implements: a human
// message, the wrapped sentinel/cause, and the component the failure is
// attributed to (empty when the failure is not component-scoped).
type RenderError interface {
	error
	Unwrap() error
	Component() string
}

type baseError struct {
	sentinel  error
	component string
	detail    string
}

func (e *baseError) Error() string {
	if e.component != "" {
		return fmt.Sprintf("%s: %s: %s", e.sentinel, e.component, e.detail)
	}
	return fmt.Sprintf("%s: %s", e.sentinel, e.detail)
}
func (e *baseError) Unwrap() error     { return e.sentinel }
func (e *baseError) Component() string { return e.component }

// ConfigurationError: rig file missing, unparsable, or a required key
// absent.
type ConfigurationError struct{ baseError }

func NewConfigurationError(detail string) *ConfigurationError {
	return &ConfigurationError{baseError{sentinel: oerrors.ErrConfiguration, detail: detail}}
}

// UnknownDataTypeError: a merge or load requested an unregistered kind.
type UnknownDataTypeError struct{ baseError }

func NewUnknownDataTypeError(dataType string) *UnknownDataTypeError {
	return &UnknownDataTypeError{baseError{sentinel: oerrors.ErrUnknownDataType, detail: dataType}}
}

// InvalidMergeMethodError: method not in {merge, new, overwrite}.
type InvalidMergeMethodError struct{ baseError }

func NewInvalidMergeMethodError(method string) *InvalidMergeMethodError {
	return &InvalidMergeMethodError{baseError{sentinel: oerrors.ErrInvalidMergeMethod, detail: method}}
}

// MissingTargetFileError: new/overwrite without fileName.
type MissingTargetFileError struct{ baseError }

func NewMissingTargetFileError(method string) *MissingTargetFileError {
	return &MissingTargetFileError{baseError{sentinel: oerrors.ErrMissingTargetFile, detail: method}}
}

// InvalidLayeredPlanError: a plan entry is missing changed/added/removed.
type InvalidLayeredPlanError struct{ baseError }

func NewInvalidLayeredPlanError(detail string) *InvalidLayeredPlanError {
	return &InvalidLayeredPlanError{baseError{sentinel: oerrors.ErrInvalidLayeredPlan, detail: detail}}
}

// ComponentInitError: parameter binding or metaNode creation failed.
type ComponentInitError struct{ baseError }

func NewComponentInitError(componentName string, cause error) *ComponentInitError {
	return &ComponentInitError{baseError{sentinel: oerrors.ErrComponentPhase, component: componentName, detail: "init: " + cause.Error()}}
}

// ComponentPhaseError: a component phase raised; wrapped with
// (componentName, phase, inner).
type ComponentPhaseError struct {
	baseError
	Phase string
}

func NewComponentPhaseError(componentName, phase string, cause error) *ComponentPhaseError {
	return &ComponentPhaseError{
		baseError: baseError{sentinel: oerrors.ErrComponentPhase, component: componentName, detail: fmt.Sprintf("phase %s: %v", phase, cause)},
		Phase:     phase,
	}
}

// UnresolvedRigParentError: CONNECT could not find the named parent
// handle. Non-fatal — callers log it and continue.
type UnresolvedRigParentError struct{ baseError }

func NewUnresolvedRigParentError(componentName, rigParent string) *UnresolvedRigParentError {
	return &UnresolvedRigParentError{baseError{sentinel: oerrors.ErrUnresolvedRigParent, component: componentName, detail: rigParent}}
}

// DataFileTypeMismatchError: a file's declared dataType is neither the
// requested kind nor AbstractData.
type DataFileTypeMismatchError struct{ baseError }

func NewDataFileTypeMismatchError(path string, cause error) *DataFileTypeMismatchError {
	return &DataFileTypeMismatchError{baseError{sentinel: oerrors.ErrDataFileTypeMismatch, detail: fmt.Sprintf("%s: %v", path, cause)}}
}

// PublishError: output path unwritable or scene-save failed.
type PublishError struct{ baseError }

func NewPublishError(detail string, cause error) *PublishError {
	return &PublishError{baseError{sentinel: oerrors.ErrPublish, detail: fmt.Sprintf("%s: %v", detail, cause)}}
}

// ExitCode maps err to its CLI exit code, by phase boundary.
// Returns ExitSuccess for a nil error, ExitConfig for anything not
// otherwise recognized (treated as a configuration-class failure).
func ExitCode(err error) int {
	if err == nil {
		return oerrors.ExitSuccess
	}
	var phaseErr *ComponentPhaseError
	if errors.As(err, &phaseErr) {
		switch phaseErr.Phase {
		case "BUILD":
			return oerrors.ExitBuild
		case "CONNECT":
			return oerrors.ExitConnect
		case "FINALIZE":
			return oerrors.ExitFinalize
		}
	}
	switch {
	case errors.Is(err, oerrors.ErrConfiguration):
		return oerrors.ExitConfig
	case errors.Is(err, oerrors.ErrPublish):
		return oerrors.ExitPublish
	}
	return oerrors.ExitConfig
}
