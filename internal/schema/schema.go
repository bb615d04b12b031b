// Package schema gates the on-disk file shapes (rig configuration,
// components, and data files) behind CUE definitions, so `rigforge rig vet`
// can report a malformed rig file, components file, or data file with a CUE
// diagnostic instead of a bare JSON decode error.
//
// Uses the same Unify + Validate against a #config-style definition pattern
// as the release schema gate, simplified to skip recursive per-field
// path-rewriting since these schemas are shallow and a single combined
// diagnostic is enough for CLI output.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed rigconfig.cue components.cue datafile.cue
var schemaFS embed.FS

// Kind names one of the schema-gated file shapes.
type Kind string

const (
	KindRigConfig     Kind = "#RigConfig"
	KindComponentFile Kind = "#ComponentsFile"
	KindDataFile      Kind = "#DataFile"
)

var schemaFiles = map[Kind]string{
	KindRigConfig:     "rigconfig.cue",
	KindComponentFile: "components.cue",
	KindDataFile:      "datafile.cue",
}

// Validate checks raw (the file's already-read bytes, JSON or YAML decoded
// to a generic any by the caller) against kind's definition. It returns a
// CUE validation error describing every violation found, or nil.
func Validate(kind Kind, decoded any) error {
	filename, ok := schemaFiles[kind]
	if !ok {
		return fmt.Errorf("schema: unrecognized kind %q", kind)
	}
	src, err := schemaFS.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("schema: reading %s: %w", filename, err)
	}

	ctx := cuecontext.New()
	schemaVal := ctx.CompileBytes(src, cue.Filename(filename))
	if schemaVal.Err() != nil {
		return fmt.Errorf("schema: compiling %s: %w", filename, schemaVal.Err())
	}
	def := schemaVal.LookupPath(cue.ParsePath(string(kind)))
	if !def.Exists() {
		return fmt.Errorf("schema: %s missing from %s", kind, filename)
	}

	dataJSON, err := json.Marshal(decoded)
	if err != nil {
		return fmt.Errorf("schema: marshaling data for validation: %w", err)
	}
	dataVal := ctx.CompileBytes(dataJSON)
	if dataVal.Err() != nil {
		return fmt.Errorf("schema: compiling data: %w", dataVal.Err())
	}

	unified := def.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema: %s validation failed: %w", kind, err)
	}
	return nil
}

// ValidateFile parses jsonBytes as JSON and validates it against kind.
// YAML/CUE rig files are expected to already be marshaled to JSON bytes by
// the caller (`rig vet` in internal/cmd does this via CUE's own
// MarshalJSON) before reaching here.
func ValidateFile(kind Kind, jsonBytes []byte) error {
	var decoded any
	if err := json.Unmarshal(jsonBytes, &decoded); err != nil {
		return fmt.Errorf("schema: parsing file: %w", err)
	}
	return Validate(kind, decoded)
}
