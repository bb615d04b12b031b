package data

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJointFile(t *testing.T, path string, keys ...string) {
	t.Helper()
	env := envelope{DataType: "Joint", Data: map[string]json.RawMessage{}}
	for _, k := range keys {
		env.Data[k] = json.RawMessage(`{}`)
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

// TestGatherLayeredSaveDataMerge reproduces scenario S1: base.json holds
// "spine" and rig.json holds "spine" and "head"; "spine", "head" and "arm"
// are saved with merge. The highest-priority (last) file keeps what it
// already owns and any genuinely new key is merged into it.
func TestGatherLayeredSaveDataMerge(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.json")
	rig := filepath.Join(dir, "rig.json")
	writeJointFile(t, base, "spine")
	writeJointFile(t, rig, "spine", "head")

	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })

	plan, err := GatherLayeredSaveData(reg, "Joint", []string{base, rig}, []string{"spine", "head", "arm"}, MethodMerge, "")
	require.NoError(t, err)
	require.NoError(t, ValidateLayeredSaveData(plan))

	assert.Equal(t, []string{"head", "spine"}, plan[rig].Changed)
	assert.Equal(t, []string{"arm"}, plan[rig].Added)
	assert.Empty(t, plan[rig].Removed)
	assert.Empty(t, plan[base].Changed)
	assert.Empty(t, plan[base].Added)
}

// TestGatherLayeredSaveDataOverwriteWithDeletions reproduces scenario S2:
// overwriting a file stack drops every currently-claimed key not present
// in dataToSave, recording it as removed on the file that owned it, and
// writes every key in dataToSave fresh into the named file.
func TestGatherLayeredSaveDataOverwriteWithDeletions(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.json")
	rig := filepath.Join(dir, "rig.json")
	writeJointFile(t, base, "spine", "tail")
	writeJointFile(t, rig, "head")

	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })

	plan, err := GatherLayeredSaveData(reg, "Joint", []string{base, rig}, []string{"spine", "head"}, MethodOverwrite, rig)
	require.NoError(t, err)
	require.NoError(t, ValidateLayeredSaveData(plan))

	assert.Equal(t, []string{"tail"}, plan[base].Removed)
	assert.Empty(t, plan[base].Changed)
	assert.Empty(t, plan[base].Added)

	assert.Equal(t, []string{"head", "spine"}, plan[rig].Added)
	assert.Empty(t, plan[rig].Changed)
}

func TestGatherLayeredSaveDataNewRequiresFileName(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })

	_, err := GatherLayeredSaveData(reg, "Joint", nil, []string{"spine"}, MethodNew, "")
	assert.Error(t, err)
}

func TestGatherLayeredSaveDataUnknownDataType(t *testing.T) {
	reg := NewRegistry()
	_, err := GatherLayeredSaveData(reg, "Nope", nil, []string{"spine"}, MethodMerge, "")
	assert.Error(t, err)
}

func TestValidateLayeredSaveDataRejectsEmptyPlan(t *testing.T) {
	assert.Error(t, ValidateLayeredSaveData(Plan{}))
}

func TestGatherLayeredSaveDataTreatsMissingFileAsEmptyLayer(t *testing.T) {
	dir := t.TempDir()
	fresh := filepath.Join(dir, "fresh.json")

	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })

	plan, err := GatherLayeredSaveData(reg, "Joint", []string{fresh}, []string{"spine"}, MethodMerge, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"spine"}, plan[fresh].Added)
}
