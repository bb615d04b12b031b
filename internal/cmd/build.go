package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigforge/rigforge/internal/core/builder"
	"github.com/rigforge/rigforge/internal/core/component"
	rigconfig "github.com/rigforge/rigforge/internal/core/config"
	"github.com/rigforge/rigforge/internal/core/data"
	"github.com/rigforge/rigforge/internal/core/scene/fake"
	oerrors "github.com/rigforge/rigforge/internal/errors"
	"github.com/rigforge/rigforge/internal/output"
)

var buildStopAtFlag string

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <rigfile>",
		Short: "Run the rig build pipeline",
		Long: `Run the full rig build pipeline against a rig configuration file.

With no host DCC session attached, build runs against an in-memory scene:
useful for validating a rig configuration's archetype chain, component
wiring, and data files without a running application. Component types
referenced by the rig's components files that have no host-registered
Hooks fall back to a no-op passthrough, so the pipeline shape (phase
ordering, data loads, publish) still exercises end to end.

Examples:
  rigforge build rig.cue
  rigforge build rig.cue --stop-at connect`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().StringVar(&buildStopAtFlag, "stop-at", "", "Stop after a named phase (initialize, guide, build, connect, finalize, optimize)")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rigFile := args[0]

	scn := fake.New()
	compReg := component.NewRegistry()
	b := builder.New(scn, data.DefaultRegistry(), compReg)

	if err := b.LoadConfig(ctx, rigFile, GetArchetypePaths()...); err != nil {
		return asExitError(err)
	}

	if err := registerPassthroughComponents(b, compReg); err != nil {
		return asExitError(err)
	}

	if buildStopAtFlag == "" {
		if err := b.Run(ctx); err != nil {
			return asExitError(err)
		}
		output.Println("build complete")
		return nil
	}

	target, err := parsePhase(buildStopAtFlag)
	if err != nil {
		return asExitError(fmt.Errorf("%w: %v", oerrors.ErrConfiguration, err))
	}
	if err := b.RunTo(ctx, target); err != nil {
		return asExitError(err)
	}
	output.Println("build stopped after " + target.String())
	return nil
}

// registerPassthroughComponents scans every components file the loaded rig
// configuration references and registers component.BaseHooks for any type
// tag not already bound, so a headless CLI run can exercise the pipeline
// shape without a host program supplying real component behavior.
func registerPassthroughComponents(b *builder.Builder, compReg *component.Registry) error {
	cfg := b.RigConfig()
	if cfg == nil {
		return nil
	}
	for _, path := range cfg.Components {
		entries, err := rigconfig.LoadComponents(path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if !compReg.Has(entry.Type) {
				compReg.Register(entry.Type, func() component.Hooks { return &component.BaseHooks{} })
			}
		}
	}
	return nil
}

func parsePhase(name string) (component.Phase, error) {
	switch strings.ToLower(name) {
	case "initialize":
		return component.Initialize, nil
	case "guide":
		return component.Guide, nil
	case "build":
		return component.Build, nil
	case "connect":
		return component.Connect, nil
	case "finalize":
		return component.Finalize, nil
	case "optimize":
		return component.Optimize, nil
	default:
		return component.Unbuilt, fmt.Errorf("unrecognized phase %q", name)
	}
}
