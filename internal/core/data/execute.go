package data

import (
	"fmt"

	"github.com/rigforge/rigforge/internal/core/scene"
	"github.com/rigforge/rigforge/internal/output"
)

// PerformLayeredSave executes plan against the scene: for each file, reads
// its prior contents, gathers fresh data for changed+added keys, drops
// removed keys, and writes the merged result.
//
// Errors bubble up per-file; prior writes are not rolled back, matching
// spec's explicit non-atomicity.
func PerformLayeredSave(reg *Registry, dataType string, s scene.Scene, plan Plan) error {
	if err := ValidateLayeredSaveData(plan); err != nil {
		return err
	}

	for _, file := range sortedKeys(plan) {
		entry := plan[file]
		if err := performOneFile(reg, dataType, s, file, entry); err != nil {
			return fmt.Errorf("performLayeredSave %s: %w", file, err)
		}
	}
	return nil
}

func performOneFile(reg *Registry, dataType string, s scene.Scene, file string, entry *FileEntry) error {
	oldData, err := reg.NewInstance(dataType)
	if err != nil {
		return err
	}
	if fileExists(file) {
		if err := oldData.Read(file); err != nil {
			return err
		}
	}

	newData, err := reg.NewInstance(dataType)
	if err != nil {
		return err
	}
	for _, key := range union(entry.Changed, entry.Added) {
		if err := newData.GatherData(s, scene.Handle(key)); err != nil {
			return fmt.Errorf("gathering %s: %w", key, err)
		}
	}

	oldData.Difference(entry.Removed)
	oldData.Merge(newData)

	return oldData.Write(file)
}

func union(a, b []string) []string {
	set := newStringSet(a)
	for _, k := range b {
		set[k] = struct{}{}
	}
	return set.sorted()
}

// Load reads a single data file of dataType and applies every key it holds
// to the scene. Per-entity application failures are logged and skipped — a
// single bad entity never halts the batch.
func Load(reg *Registry, dataType string, s scene.Scene, path string) error {
	h, err := reg.NewInstance(dataType)
	if err != nil {
		return err
	}
	if err := h.Read(path); err != nil {
		return err
	}
	return applyAllData(s, h)
}

// applyAllData invokes ApplyData per key rather than in one batch call, so
// a single entity's failure can be logged and skipped without losing the
// rest of the file.
func applyAllData(s scene.Scene, h Handler) error {
	for _, key := range h.GetKeys() {
		if err := h.ApplyData(s, []string{key}); err != nil {
			output.Warn("applying data entity failed", "dataType", h.Tag(), "key", key, "err", err)
		}
	}
	return nil
}

// LoadDirectory is the multi-file variant of Load for data kinds like skin
// weights where each entity is stored in its own file under a directory.
// ext filters which files are considered (e.g. ".json").
func LoadDirectory(reg *Registry, dataType string, s scene.Scene, dir string, ext string, listDir func(dir, ext string) ([]string, error)) error {
	files, err := listDir(dir, ext)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := Load(reg, dataType, s, f); err != nil {
			output.Warn("loading data file failed", "dataType", dataType, "file", f, "err", err)
		}
	}
	return nil
}
