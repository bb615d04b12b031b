package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rigforge/rigforge/internal/core/component"
	oerrors "github.com/rigforge/rigforge/internal/errors"
)

// componentEntryJSON mirrors the on-disk shape of one entry in a
// components file.
type componentEntryJSON struct {
	Name         string                       `json:"name"`
	Type         string                       `json:"type"`
	Input        []string                     `json:"input"`
	RigParent    string                       `json:"rigParent"`
	ComponentTag string                       `json:"componentTag"`
	Parameters   map[string]component.RawParam `json:"parameters"`
}

// LoadComponents decodes a components data file (the standard data-file
// envelope around a list of component entries) into typed Entry values, in
// file order. Duplicate names are rejected: (name, type) is the canonical
// lookup key, so name must be unique within a components file.
func LoadComponents(path string) ([]component.Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: components file %s: %v", oerrors.ErrConfiguration, path, err)
	}

	var envelope struct {
		DataType string                `json:"dataType"`
		Data     []componentEntryJSON `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: components file %s: %v", oerrors.ErrConfiguration, path, err)
	}

	seen := make(map[string]bool, len(envelope.Data))
	entries := make([]component.Entry, 0, len(envelope.Data))
	for _, e := range envelope.Data {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: components file %s: entry missing name", oerrors.ErrConfiguration, path)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("%w: components file %s: duplicate component name %q", oerrors.ErrConfiguration, path, e.Name)
		}
		seen[e.Name] = true

		entry, err := component.EntryFromJSON(e.Name, e.Type, e.Input, e.RigParent, e.ComponentTag, e.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%w: components file %s: %v", oerrors.ErrConfiguration, path, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
