package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd_Use(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "rigforge", root.Use)
	assert.NotEmpty(t, root.Short)
}

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"build", "rig", "component", "watch", "serve-metrics", "version"} {
		assert.True(t, names[want], "expected subcommand %q to be registered", want)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"config", "verbose", "timestamps", "archetype-path"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "expected persistent flag %q", name)
	}
}

func TestGetArchetypePaths_EmptyBeforeInit(t *testing.T) {
	resolvedArchetypePaths = nil
	assert.Empty(t, GetArchetypePaths())
}

func TestVersionCmd_Execute(t *testing.T) {
	cmd := NewVersionCmd()
	err := cmd.Execute()
	assert.NoError(t, err)
}
