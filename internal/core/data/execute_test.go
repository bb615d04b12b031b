package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rigforge/rigforge/internal/core/scene"
	"github.com/rigforge/rigforge/internal/core/scene/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformLayeredSaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := fake.New()
	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })

	spine, err := s.CreateContainer(ctx, "spine", "")
	require.NoError(t, err)
	require.NoError(t, s.AddAttr(ctx, spine, "jointTransform", scene.AttrMessage))
	require.NoError(t, s.SetAttr(ctx, spine, "jointTransform", JointPayload{Translate: [3]float64{1, 2, 3}}))

	path := filepath.Join(t.TempDir(), "joints.json")
	plan := Plan{path: {Changed: []string{}, Added: []string{string(spine)}, Removed: []string{}}}

	require.NoError(t, PerformLayeredSave(reg, "Joint", s, plan))

	// Clear the scene attribute, then reload from disk and confirm it's
	// restored.
	require.NoError(t, s.SetAttr(ctx, spine, "jointTransform", JointPayload{}))
	require.NoError(t, Load(reg, "Joint", s, path))

	v, ok, err := s.GetAttr(ctx, spine, "jointTransform")
	require.NoError(t, err)
	require.True(t, ok)
	payload, ok := v.(JointPayload)
	require.True(t, ok)
	assert.Equal(t, [3]float64{1, 2, 3}, payload.Translate)
}

func TestPerformLayeredSaveAppliesRemovals(t *testing.T) {
	ctx := context.Background()
	s := fake.New()
	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })

	spine, _ := s.CreateContainer(ctx, "spine", "")
	require.NoError(t, s.AddAttr(ctx, spine, "jointTransform", scene.AttrMessage))
	require.NoError(t, s.SetAttr(ctx, spine, "jointTransform", JointPayload{}))

	path := filepath.Join(t.TempDir(), "joints.json")
	writePlan := Plan{path: {Changed: []string{}, Added: []string{string(spine)}, Removed: []string{}}}
	require.NoError(t, PerformLayeredSave(reg, "Joint", s, writePlan))

	removePlan := Plan{path: {Changed: []string{}, Added: []string{}, Removed: []string{string(spine)}}}
	require.NoError(t, PerformLayeredSave(reg, "Joint", s, removePlan))

	h, err := reg.NewInstance("Joint")
	require.NoError(t, err)
	require.NoError(t, h.Read(path))
	assert.Empty(t, h.GetKeys())
}

func TestLoadDirectoryContinuesOnFailure(t *testing.T) {
	ctx := context.Background()
	s := fake.New()
	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")

	spine, _ := s.CreateContainer(ctx, "spine", "")
	require.NoError(t, s.AddAttr(ctx, spine, "jointTransform", scene.AttrMessage))
	plan := Plan{good: {Changed: []string{}, Added: []string{string(spine)}, Removed: []string{}}}
	require.NoError(t, PerformLayeredSave(reg, "Joint", s, plan))

	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))

	listDir := func(dir, ext string) ([]string, error) { return []string{good, bad}, nil }
	err := LoadDirectory(reg, "Joint", s, dir, ".json", listDir)
	assert.NoError(t, err) // per-file failures are logged, not propagated
}
