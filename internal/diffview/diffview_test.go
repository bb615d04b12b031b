package diffview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_Identical(t *testing.T) {
	doc := []byte("rigName: biped\nguides: guides/spine.cue\n")
	result, err := Compare("a.yaml", doc, "b.yaml", doc, false)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Empty(t, result.Report)
}

func TestCompare_Changed(t *testing.T) {
	left := []byte("rigName: biped\nguides: guides/spine_v1.cue\n")
	right := []byte("rigName: biped\nguides: guides/spine_v2.cue\n")

	result, err := Compare("left.yaml", left, "right.yaml", right, false)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.NotEmpty(t, result.Report)
	assert.Contains(t, result.Report, "guides")
}

func TestCompare_EmptyToPopulated(t *testing.T) {
	result, err := Compare("before.yaml", nil, "after.yaml", []byte("rigName: biped\n"), false)
	require.NoError(t, err)
	assert.True(t, result.Changed)
}

func TestCompare_InvalidYAML(t *testing.T) {
	_, err := Compare("bad.yaml", []byte("not: valid: yaml: at: all: ["), "other.yaml", []byte("rigName: biped\n"), false)
	assert.Error(t, err)
}

func TestCompare_NoColorOmitsANSI(t *testing.T) {
	left := []byte("rigName: old\n")
	right := []byte("rigName: new\n")

	result, err := Compare("left.yaml", left, "right.yaml", right, false)
	require.NoError(t, err)
	assert.NotContains(t, result.Report, "\x1b[")
}
