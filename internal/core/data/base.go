package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	oerrors "github.com/rigforge/rigforge/internal/errors"
)

func filepathDir(path string) string { return filepath.Dir(path) }

// Base implements the storage-only parts of Handler (Read, Write, GetKeys,
// GetData, SetData, Merge, Difference) that are identical across every
// concrete data kind. Concrete kinds embed Base and supply Tag,
// GatherData, and ApplyData — the pieces that actually touch the scene.
type Base struct {
	tag  string
	data map[string]Payload
}

// NewBase returns a Base stamped with tag and an empty store.
func NewBase(tag string) Base {
	return Base{tag: tag, data: make(map[string]Payload)}
}

func (b *Base) Tag() string { return b.tag }

func (b *Base) GetKeys() []string { return sortedKeys(b.data) }

func (b *Base) GetData() map[string]Payload {
	out := make(map[string]Payload, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

func (b *Base) SetData(d map[string]Payload) {
	if d == nil {
		d = make(map[string]Payload)
	}
	b.data = d
}

// Get returns the raw payload for key, or nil if absent.
func (b *Base) Get(key string) (Payload, bool) {
	v, ok := b.data[key]
	return v, ok
}

// Set stores a payload for key.
func (b *Base) Set(key string, v Payload) {
	if b.data == nil {
		b.data = make(map[string]Payload)
	}
	b.data[key] = v
}

// Merge unions other's keys into the receiver, with other's values
// overriding the receiver's on collision.
func (b *Base) Merge(other Handler) {
	if b.data == nil {
		b.data = make(map[string]Payload)
	}
	for k, v := range other.GetData() {
		b.data[k] = v
	}
}

// Difference removes keys from the receiver's store.
func (b *Base) Difference(keys []string) {
	for _, k := range keys {
		delete(b.data, k)
	}
}

// Read loads the dataType/data envelope from path into the receiver,
// verifying the file's declared dataType matches (or is AbstractDataType).
func (b *Base) Read(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s: %v", oerrors.ErrValidation, path, err)
	}
	if env.DataType != b.tag && env.DataType != AbstractDataType {
		return fmt.Errorf("%w: %s declares %q, expected %q", oerrors.ErrDataFileTypeMismatch, path, env.DataType, b.tag)
	}
	data := make(map[string]Payload, len(env.Data))
	for k, v := range env.Data {
		data[k] = v
	}
	b.data = data
	return nil
}

// Write serializes the receiver's store to path under the dataType/data
// envelope, creating parent directories as needed.
func (b *Base) Write(path string) error {
	env := envelope{DataType: b.tag, Data: make(map[string]json.RawMessage, len(b.data))}
	for k, v := range b.data {
		env.Data[k] = v
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepathDir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, out, 0o644)
}
