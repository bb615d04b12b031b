package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLastWinsOnCollision(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Joint", func() Handler { return NewJointData() })
	reg.Register("Joint", func() Handler { return NewGuideData() })

	h, err := reg.NewInstance("Joint")
	require.NoError(t, err)
	assert.Equal(t, "Guide", h.Tag())
}

func TestRegistryUnknownTag(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.NewInstance("Nope")
	assert.Error(t, err)
	assert.False(t, reg.Has("Nope"))
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	reg := DefaultRegistry()
	for _, tag := range []string{"Abstract", "Joint", "Guide", "ControlShape", "SkinWeights", "PSD", "DeformLayer", "Deformer", "Shape"} {
		assert.True(t, reg.Has(tag), tag)
	}
}

func TestListHandlersSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Zeta", func() Handler { return NewJointData() })
	reg.Register("Alpha", func() Handler { return NewJointData() })
	assert.Equal(t, []string{"Alpha", "Zeta"}, reg.ListHandlers())
}
