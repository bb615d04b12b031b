// Package config holds CLI-ambient settings — the user's rigforge home
// directory, cache, and default component/archetype search paths — as
// distinct from a rig's own configuration (internal/core/config), which is
// build content, not tool settings.
package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for the CLI.
type Paths struct {
	// ConfigFile is the path to the CLI settings file (~/.rigforge/config.cue).
	ConfigFile string

	// CacheDir is the path to the cache directory (~/.rigforge/cache).
	CacheDir string

	// HomeDir is the path to the rigforge home directory (~/.rigforge).
	HomeDir string
}

// DefaultPaths returns the default paths, expanding ~ to the user's home directory.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	rigforgeHome := filepath.Join(homeDir, ".rigforge")
	return &Paths{
		ConfigFile: filepath.Join(rigforgeHome, "config.cue"),
		CacheDir:   filepath.Join(rigforgeHome, "cache"),
		HomeDir:    rigforgeHome,
	}, nil
}

// PathsFromEnv returns paths considering environment overrides.
func PathsFromEnv() (*Paths, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}

	if configPath := os.Getenv("RIGFORGE_CONFIG"); configPath != "" {
		paths.ConfigFile = configPath
	}
	if cacheDir := os.Getenv("RIGFORGE_CACHE_DIR"); cacheDir != "" {
		paths.CacheDir = cacheDir
	}

	return paths, nil
}

// ExpandTilde expands a leading "~" to the user's home directory. A bare
// "~" or "~/..." is expanded; "~username/..." and a "~" elsewhere in the
// path are left untouched. Falls back to the original path if the home
// directory cannot be determined.
func ExpandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return homeDir
	}
	return filepath.Join(homeDir, path[1:])
}

// EnsureDir ensures a directory exists with the given permissions.
func EnsureDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
