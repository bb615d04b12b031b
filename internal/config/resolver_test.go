package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveComponentPath_FlagPrecedence(t *testing.T) {
	os.Setenv("RIGFORGE_COMPONENT_PATH", "/env/archetypes")
	defer os.Unsetenv("RIGFORGE_COMPONENT_PATH")

	result := ResolveComponentPath(ResolveComponentPathOptions{
		FlagValue:   "/flag/archetypes",
		ConfigValue: "/config/archetypes",
	})

	assert.Equal(t, "/flag/archetypes", result.ComponentPath)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env/archetypes", result.Shadowed[SourceEnv])
	assert.Equal(t, "/config/archetypes", result.Shadowed[SourceConfig])
}

func TestResolveComponentPath_EnvPrecedence(t *testing.T) {
	os.Setenv("RIGFORGE_COMPONENT_PATH", "/env/archetypes")
	defer os.Unsetenv("RIGFORGE_COMPONENT_PATH")

	result := ResolveComponentPath(ResolveComponentPathOptions{
		ConfigValue: "/config/archetypes",
	})

	assert.Equal(t, "/env/archetypes", result.ComponentPath)
	assert.Equal(t, SourceEnv, result.Source)
	assert.Equal(t, "/config/archetypes", result.Shadowed[SourceConfig])
	assert.NotContains(t, result.Shadowed, SourceFlag)
}

func TestResolveComponentPath_ConfigFallback(t *testing.T) {
	os.Unsetenv("RIGFORGE_COMPONENT_PATH")

	result := ResolveComponentPath(ResolveComponentPathOptions{
		ConfigValue: "/config/archetypes",
	})

	assert.Equal(t, "/config/archetypes", result.ComponentPath)
	assert.Equal(t, SourceConfig, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestResolveComponentPath_Empty(t *testing.T) {
	os.Unsetenv("RIGFORGE_COMPONENT_PATH")

	result := ResolveComponentPath(ResolveComponentPathOptions{})

	assert.Empty(t, result.ComponentPath)
	assert.Empty(t, result.Source)
}

func TestResolveConfigPath_FlagPrecedence(t *testing.T) {
	os.Setenv("RIGFORGE_CONFIG", "/env/path/config.yaml")
	defer os.Unsetenv("RIGFORGE_CONFIG")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{
		FlagValue: "/flag/path/config.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, "/flag/path/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env/path/config.yaml", result.Shadowed[SourceEnv])
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_EnvPrecedence(t *testing.T) {
	os.Setenv("RIGFORGE_CONFIG", "/env/path/config.yaml")
	defer os.Unsetenv("RIGFORGE_CONFIG")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{
		FlagValue: "",
	})
	require.NoError(t, err)

	assert.Equal(t, "/env/path/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceEnv, result.Source)
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_Default(t *testing.T) {
	os.Unsetenv("RIGFORGE_CONFIG")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{
		FlagValue: "",
	})
	require.NoError(t, err)

	assert.Contains(t, result.ConfigPath, ".rigforge")
	assert.Contains(t, result.ConfigPath, "config.cue")
	assert.Equal(t, SourceDefault, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "flag", string(SourceFlag))
	assert.Equal(t, "env", string(SourceEnv))
	assert.Equal(t, "config", string(SourceConfig))
	assert.Equal(t, "default", string(SourceDefault))
}
