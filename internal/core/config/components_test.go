package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeComponentsFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadComponentsPreservesFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.json")
	writeComponentsFile(t, path, `{
		"dataType": "AbstractData",
		"data": [
			{"name": "spine", "type": "spine.Spine", "input": ["spine_01"]},
			{"name": "arm_l", "type": "limb.Arm", "rigParent": "spine"}
		]
	}`)

	entries, err := LoadComponents(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "spine", entries[0].Name)
	assert.Equal(t, "arm_l", entries[1].Name)
	assert.Equal(t, "spine", entries[1].RigParent)
}

func TestLoadComponentsDecodesTypedParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.json")
	writeComponentsFile(t, path, `{
		"dataType": "AbstractData",
		"data": [
			{"name": "arm_l", "type": "limb.Arm", "parameters": {
				"numJoints": {"value": 3, "dataType": "int"},
				"side": {"value": "left", "dataType": "string"}
			}}
		]
	}`)

	entries, err := LoadComponents(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	numJoints, ok := entries[0].Parameters["numJoints"]
	require.True(t, ok)
	assert.Equal(t, 3, numJoints.Int)

	side, ok := entries[0].Parameters["side"]
	require.True(t, ok)
	assert.Equal(t, "left", side.Str)
}

func TestLoadComponentsRejectsDuplicateNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.json")
	writeComponentsFile(t, path, `{
		"dataType": "AbstractData",
		"data": [
			{"name": "spine", "type": "spine.Spine"},
			{"name": "spine", "type": "spine.SpineV2"}
		]
	}`)

	_, err := LoadComponents(path)
	assert.Error(t, err)
}
