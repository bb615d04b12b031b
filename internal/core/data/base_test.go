package data

import (
	"encoding/json"
	"path/filepath"
	"testing"

	oerrors "github.com/rigforge/rigforge/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseWriteReadRoundTrip(t *testing.T) {
	b := NewBase("Joint")
	b.Set("spine", json.RawMessage(`{"translate":[1,2,3]}`))

	path := filepath.Join(t.TempDir(), "nested", "joints.json")
	require.NoError(t, b.Write(path))

	b2 := NewBase("Joint")
	require.NoError(t, b2.Read(path))
	assert.Equal(t, []string{"spine"}, b2.GetKeys())
}

func TestBaseReadRejectsTypeMismatch(t *testing.T) {
	b := NewBase("Guide")
	b.Set("spine", json.RawMessage(`{}`))
	path := filepath.Join(t.TempDir(), "guides.json")
	require.NoError(t, b.Write(path))

	joint := NewBase("Joint")
	err := joint.Read(path)
	assert.ErrorIs(t, err, oerrors.ErrDataFileTypeMismatch)
}

func TestBaseReadAcceptsAbstractDataType(t *testing.T) {
	b := NewBase(AbstractDataType)
	b.Set("spine", json.RawMessage(`{}`))
	path := filepath.Join(t.TempDir(), "abstract.json")
	require.NoError(t, b.Write(path))

	joint := NewBase("Joint")
	require.NoError(t, joint.Read(path))
}

func TestBaseMergeOtherWins(t *testing.T) {
	a := NewJointData()
	a.Set("spine", json.RawMessage(`{"v":1}`))
	b := NewJointData()
	b.Set("spine", json.RawMessage(`{"v":2}`))
	b.Set("head", json.RawMessage(`{"v":3}`))

	a.Merge(b)
	assert.ElementsMatch(t, []string{"spine", "head"}, a.GetKeys())
	v, _ := a.Get("spine")
	assert.JSONEq(t, `{"v":2}`, string(v))
}

func TestBaseDifferenceRemovesKeys(t *testing.T) {
	b := NewBase("Joint")
	b.Set("spine", json.RawMessage(`{}`))
	b.Set("head", json.RawMessage(`{}`))
	b.Difference([]string{"spine"})
	assert.Equal(t, []string{"head"}, b.GetKeys())
}
