// Package cmd provides the rigforge CLI command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/output"
)

var (
	// Global flags
	configFlag         string
	verboseFlag        bool
	timestampsFlag     bool
	archetypePathFlags []string

	// resolvedConfigPath is the --config flag resolved against env and
	// default, computed once during PersistentPreRunE.
	resolvedConfigPath string

	// resolvedArchetypePaths merges --archetype-path flags with the settings
	// file's archetypePath list, flags first.
	resolvedArchetypePaths []string
)

// NewRootCmd creates the root command for the rigforge CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rigforge",
		Short:         "Rig assembly pipeline CLI",
		Long:          `rigforge drives the layered rig-configuration and component build pipeline from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to CLI settings file (env: RIGFORGE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")
	rootCmd.PersistentFlags().StringArrayVar(&archetypePathFlags, "archetype-path", nil, "Extra search root for baseArchetype names (repeatable)")

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewRigCmd())
	rootCmd.AddCommand(NewComponentCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewServeMetricsCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and resolves the CLI settings path.
func initializeGlobals(cmd *cobra.Command) error {
	result, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{FlagValue: configFlag})
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	resolvedConfigPath = result.ConfigPath

	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	}
	output.SetupLogging(logCfg)

	if verboseFlag {
		output.Debug("initializing CLI", "config", resolvedConfigPath, "source", result.Source)
	}

	settings, err := config.LoadSettings(resolvedConfigPath)
	if err != nil {
		return fmt.Errorf("loading CLI settings: %w", err)
	}
	resolvedArchetypePaths = append(append([]string{}, archetypePathFlags...), settings.ArchetypePaths...)

	return nil
}

// GetConfigPath returns the resolved CLI settings path.
func GetConfigPath() string { return resolvedConfigPath }

// GetArchetypePaths returns the --archetype-path flag values merged with the
// settings file's archetypePath list.
func GetArchetypePaths() []string { return resolvedArchetypePaths }
