package config

import (
	"os"

	"github.com/rigforge/rigforge/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	SourceFlag    ConfigSource = "flag"
	SourceEnv     ConfigSource = "env"
	SourceConfig  ConfigSource = "config"
	SourceDefault ConfigSource = "default"
)

// ResolveComponentPathOptions contains options for resolving the default
// component-search path used when a rig file's component `type` tags are
// not found in the static registry and a plugin directory must be
// consulted.
type ResolveComponentPathOptions struct {
	// FlagValue is the --component-path flag value (empty if not set).
	FlagValue string
	// ConfigValue is the componentPath value from the CLI settings file.
	ConfigValue string
}

type ResolveComponentPathResult struct {
	ComponentPath string
	Source        ConfigSource
	Shadowed      map[ConfigSource]string
}

// ResolveComponentPath resolves the component search path using
// precedence: (1) --component-path flag, (2) RIGFORGE_COMPONENT_PATH env,
// (3) CLI settings file.
func ResolveComponentPath(opts ResolveComponentPathOptions) ResolveComponentPathResult {
	result := ResolveComponentPathResult{Shadowed: make(map[ConfigSource]string)}
	envValue := os.Getenv("RIGFORGE_COMPONENT_PATH")

	switch {
	case opts.FlagValue != "":
		result.ComponentPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		if opts.ConfigValue != "" {
			result.Shadowed[SourceConfig] = opts.ConfigValue
		}
	case envValue != "":
		result.ComponentPath = envValue
		result.Source = SourceEnv
		if opts.ConfigValue != "" {
			result.Shadowed[SourceConfig] = opts.ConfigValue
		}
	case opts.ConfigValue != "":
		result.ComponentPath = opts.ConfigValue
		result.Source = SourceConfig
	}

	return result
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

type ResolveConfigPathResult struct {
	ConfigPath string
	Source     ConfigSource
	Shadowed   map[ConfigSource]string
}

// ResolveConfigPath resolves the CLI settings file path using precedence:
// (1) --config flag, (2) RIGFORGE_CONFIG env, (3) ~/.rigforge/config.cue.
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{Shadowed: make(map[ConfigSource]string)}
	envValue := os.Getenv("RIGFORGE_CONFIG")

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case opts.FlagValue != "":
		result.ConfigPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	return result, nil
}

// ResolvedValue is one configuration key's resolution outcome, logged at
// DEBUG under --verbose.
type ResolvedValue struct {
	Key      string
	Value    string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}

// LogResolvedValues logs configuration resolution at DEBUG level when verbose.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved", "key", v.Key, "value", v.Value, "source", v.Source)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence", "key", v.Key, "shadowed_source", source, "shadowed_value", shadowed)
		}
	}
}
