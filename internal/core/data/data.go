// Package data implements the DataModule Registry and the Layered Data
// Merge Engine: the file-stack algorithm that saves and loads per-entity
// rig data (joints, guides, control shapes, skin weights, deformer graphs)
// across archetype-layered files.
//
// Grounded on scripts/rigamajig2/maya/builder/data_manager.py.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rigforge/rigforge/internal/core/scene"
	oerrors "github.com/rigforge/rigforge/internal/errors"
)

// AbstractDataType is the dataType tag that is compatible with any handler.
// A file tagged AbstractDataType carries no kind-specific payload and never
// fails the dataType filter in gatherLayeredSaveData.
const AbstractDataType = "AbstractData"

// MergeMethod names the three save policies the execution engine dispatches
// on.
type MergeMethod string

const (
	MethodMerge     MergeMethod = "merge"
	MethodNew       MergeMethod = "new"
	MethodOverwrite MergeMethod = "overwrite"
)

// Payload is the opaque, kind-specific record stored per entity key. The
// core never interprets it; only a concrete Handler (joint, guide, ...)
// does. Using json.RawMessage keeps read/write a single unmarshal/marshal
// pass regardless of payload shape.
type Payload = json.RawMessage

// Handler is the single abstract interface every concrete data kind
// implements.
type Handler interface {
	// Tag returns the dataType string this handler reads and writes.
	Tag() string

	// GatherData captures the current scene state of entity into the
	// handler's in-memory store.
	GatherData(s scene.Scene, entity scene.Handle) error

	// ApplyData writes the handler's stored data for the given keys back
	// onto the scene. An empty keys slice applies every stored key.
	ApplyData(s scene.Scene, keys []string) error

	// Read loads file contents (the top-level dataType/data envelope) into
	// the handler, replacing any data currently held.
	Read(path string) error

	// Write serializes the handler's current data to path under the
	// dataType/data envelope.
	Write(path string) error

	// GetKeys returns every entity key currently stored, in stable order.
	GetKeys() []string

	// GetData returns the full key->payload map held by the handler.
	GetData() map[string]Payload

	// SetData replaces the handler's in-memory store wholesale.
	SetData(map[string]Payload)

	// Merge combines other into the receiver: union of keys, other's
	// values win on collision. Merge mutates the receiver in place and
	// returns nothing.
	Merge(other Handler)

	// Difference removes the given keys from the receiver's store.
	Difference(keys []string)
}

// envelope is the on-disk shape every data file obeys.
type envelope struct {
	DataType string                     `json:"dataType"`
	Data     map[string]json.RawMessage `json:"data"`
}

// peekDataType reads just the dataType field of a file without fully
// decoding its payload, used by the plan builder to filter the file stack
// before committing to a handler instantiation per file.
func peekDataType(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var env struct {
		DataType string `json:"dataType"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("%w: %s: %v", oerrors.ErrValidation, path, err)
	}
	return env.DataType, nil
}

// sortedKeys returns a sorted copy of a map's keys, giving the merge
// engine deterministic iteration order independent of Go's randomized map
// iteration.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringSet is a small set helper used throughout the merge engine.
type stringSet map[string]struct{}

func newStringSet(keys []string) stringSet {
	s := make(stringSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s stringSet) has(k string) bool {
	_, ok := s[k]
	return ok
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
