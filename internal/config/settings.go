package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds ambient CLI defaults read from the settings file at
// ResolveConfigPathResult.ConfigPath — separate from a rig's own build
// content (internal/core/config), this is tool configuration: default
// archetype search roots, color preference, and the like.
type Settings struct {
	ArchetypePaths []string
	Color          bool
}

// LoadSettings reads the settings file at path using viper (accepting
// YAML, JSON, TOML, or CUE-as-JSON-superset content) and binds the
// RIGFORGE_* environment prefix over it. A missing file is not an error —
// LoadSettings returns the defaults (no archetype paths, Color true) with
// any RIGFORGE_* environment values applied.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("RIGFORGE")
	v.AutomaticEnv()
	v.SetDefault("color", true)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			// viper has no ".cue" decoder. The CLI settings file only ever
			// holds a flat key: value document (unlike a rig's own CUE
			// configuration, which internal/schema evaluates properly), so a
			// YAML parse handles it.
			if strings.HasSuffix(path, ".cue") {
				v.SetConfigType("yaml")
			}
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return Settings{}, err
				}
			}
		}
	}

	return Settings{
		ArchetypePaths: v.GetStringSlice("archetypePath"),
		Color:          v.GetBool("color"),
	}, nil
}
