package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRigFile(t *testing.T, path string, body map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	rig := filepath.Join(dir, "rig.json")
	writeRigFile(t, rig, map[string]any{
		"rigName":   "hero",
		"modelFile": "model.fbx",
	})

	loader := NewLoader()
	cfg, err := loader.Load(context.Background(), rig)
	require.NoError(t, err)

	assert.Equal(t, "hero", cfg.RigName)
	require.Len(t, cfg.ModelFile, 1)
	assert.Equal(t, filepath.Join(dir, "model.fbx"), cfg.ModelFile[0])
}

func TestLoadCoercesSingleStringToList(t *testing.T) {
	dir := t.TempDir()
	rig := filepath.Join(dir, "rig.json")
	writeRigFile(t, rig, map[string]any{
		"rigName":   "hero",
		"preScript": "setup.py",
	})

	loader := NewLoader()
	cfg, err := loader.Load(context.Background(), rig)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "setup.py")}, cfg.PreScript)
}

func TestLoadAbsolutePathShortCircuits(t *testing.T) {
	dir := t.TempDir()
	rig := filepath.Join(dir, "rig.json")
	writeRigFile(t, rig, map[string]any{
		"rigName":   "hero",
		"modelFile": "/abs/model.fbx",
	})

	loader := NewLoader()
	cfg, err := loader.Load(context.Background(), rig)
	require.NoError(t, err)
	assert.Equal(t, []string{"/abs/model.fbx"}, cfg.ModelFile)
}

// TestArchetypeScriptOrdering reproduces property P7: archetype A
// inheriting B inheriting C, each defining its own preScript plus one
// shared absolute script path, flattens to [sA, shared, sB, sC]
// nearest-first with duplicates dropped on second occurrence.
func TestArchetypeScriptOrdering(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.py")

	cDir := filepath.Join(dir, "archetypes", "c")
	bDir := filepath.Join(dir, "archetypes", "b")
	writeRigFile(t, filepath.Join(cDir, "rig.json"), map[string]any{
		"rigName":   "c",
		"preScript": []string{"sC.py", shared},
	})
	writeRigFile(t, filepath.Join(bDir, "rig.json"), map[string]any{
		"rigName":       "b",
		"baseArchetype": "c",
		"preScript":     []string{"sB.py", shared},
	})
	aRig := filepath.Join(dir, "rig.json")
	writeRigFile(t, aRig, map[string]any{
		"rigName":       "a",
		"baseArchetype": "b",
		"preScript":     []string{"sA.py", shared},
	})

	loader := NewLoader(filepath.Join(dir, "archetypes"))
	cfg, err := loader.Load(context.Background(), aRig)
	require.NoError(t, err)

	scripts := cfg.CollectScripts(ScriptPre)
	require.Len(t, scripts, 4)
	assert.Equal(t, filepath.Join(dir, "sA.py"), scripts[0])
	assert.Equal(t, shared, scripts[1])
	assert.Equal(t, filepath.Join(bDir, "sB.py"), scripts[2])
	assert.Equal(t, filepath.Join(cDir, "sC.py"), scripts[3])
}

// TestArchetypeDataFileOrdering covers the fileStack ordering invariant of
// §4.2: archetype A inheriting B, each defining its own guides file, must
// flatten to [gB, gA] so the rig's own file sits last and wins both load
// precedence and save-target claim over its archetype's.
func TestArchetypeDataFileOrdering(t *testing.T) {
	dir := t.TempDir()

	bDir := filepath.Join(dir, "archetypes", "b")
	writeRigFile(t, filepath.Join(bDir, "rig.json"), map[string]any{
		"rigName": "b",
		"guides":  []string{"gB.json"},
	})
	aRig := filepath.Join(dir, "rig.json")
	writeRigFile(t, aRig, map[string]any{
		"rigName":       "a",
		"baseArchetype": "b",
		"guides":        []string{"gA.json"},
	})

	loader := NewLoader(filepath.Join(dir, "archetypes"))
	cfg, err := loader.Load(context.Background(), aRig)
	require.NoError(t, err)

	require.Len(t, cfg.Guides, 2)
	assert.Equal(t, filepath.Join(bDir, "gB.json"), cfg.Guides[0])
	assert.Equal(t, filepath.Join(dir, "gA.json"), cfg.Guides[1])
}

func TestArchetypeCycleIsRejected(t *testing.T) {
	dir := t.TempDir()
	archetypes := filepath.Join(dir, "archetypes")
	aPath := filepath.Join(archetypes, "a", "rig.json")
	bPath := filepath.Join(archetypes, "b", "rig.json")
	writeRigFile(t, aPath, map[string]any{"rigName": "a", "baseArchetype": "b"})
	writeRigFile(t, bPath, map[string]any{"rigName": "b", "baseArchetype": "a"})

	loader := NewLoader(archetypes)
	_, err := loader.Load(context.Background(), aPath)
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load(context.Background(), "/nonexistent/rig.json")
	assert.Error(t, err)
}
