package fake

import (
	"context"
	"testing"

	"github.com/rigforge/rigforge/internal/core/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContainerAndTag(t *testing.T) {
	ctx := context.Background()
	s := New()

	root, err := s.CreateContainer(ctx, "rig", "")
	require.NoError(t, err)
	require.NoError(t, s.Tag(ctx, root, "rigRoot"))

	tagged, err := s.GetTagged(ctx, "rigRoot")
	require.NoError(t, err)
	assert.Equal(t, []scene.Handle{root}, tagged)
}

func TestCreateContainerUnknownParentFails(t *testing.T) {
	s := New()
	_, err := s.CreateContainer(context.Background(), "orphan", scene.Handle("|missing"))
	assert.Error(t, err)
}

func TestDeleteContainerRemovesSubtree(t *testing.T) {
	ctx := context.Background()
	s := New()
	root, _ := s.CreateContainer(ctx, "rig", "")
	child, _ := s.CreateContainer(ctx, "arm", root)
	_, _ = s.CreateContainer(ctx, "hand", child)

	require.Equal(t, 3, s.NodeCount())
	require.NoError(t, s.DeleteContainer(ctx, root))
	assert.Equal(t, 0, s.NodeCount())
}

func TestSetAndGetAttr(t *testing.T) {
	ctx := context.Background()
	s := New()
	h, _ := s.CreateContainer(ctx, "spine", "")

	_, ok, err := s.GetAttr(ctx, h, "weight")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddAttr(ctx, h, "weight", scene.AttrFloat))
	require.NoError(t, s.SetAttr(ctx, h, "weight", 0.5))

	v, ok, err := s.GetAttr(ctx, h, "weight")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
}

func TestAddAttrIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	h, _ := s.CreateContainer(ctx, "spine", "")
	require.NoError(t, s.AddAttr(ctx, h, "weight", scene.AttrFloat))
	require.NoError(t, s.SetAttr(ctx, h, "weight", 0.75))
	require.NoError(t, s.AddAttr(ctx, h, "weight", scene.AttrFloat)) // must not reset

	v, _, _ := s.GetAttr(ctx, h, "weight")
	assert.Equal(t, 0.75, v)
}

func TestParentReparentsAndUpdatesChildren(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.CreateContainer(ctx, "a", "")
	b, _ := s.CreateContainer(ctx, "b", "")
	child, _ := s.CreateContainer(ctx, "child", a)

	require.NoError(t, s.Parent(ctx, child, b))

	aChildren, _ := s.ListRelatives(ctx, a)
	bChildren, _ := s.ListRelatives(ctx, b)
	assert.Empty(t, aChildren)
	assert.Equal(t, []scene.Handle{child}, bChildren)
}

func TestImportFileAndSaveSceneRecordCalls(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.ImportFile(ctx, "model.fbx", "char"))
	require.NoError(t, s.SaveScene(ctx, "out.scene"))

	assert.Equal(t, []string{"char:model.fbx"}, s.Imports())
	assert.Equal(t, []string{"out.scene"}, s.SavedScenes())
}

func TestRelativize(t *testing.T) {
	s := New()
	assert.Equal(t, "../guides/arm.json", s.Relativize("/rig/components", "/rig/guides/arm.json"))
	assert.Equal(t, "arm.json", s.Relativize("/rig/guides", "/rig/guides/arm.json"))
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	s := New()
	h, _ := s.CreateContainer(ctx, "spine", "")
	assert.True(t, s.Exists(ctx, h))
	require.NoError(t, s.DeleteContainer(ctx, h))
	assert.False(t, s.Exists(ctx, h))
}
