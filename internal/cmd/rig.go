package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/cobra"
	k8syaml "sigs.k8s.io/yaml"

	rigconfig "github.com/rigforge/rigforge/internal/core/config"
	rigcue "github.com/rigforge/rigforge/internal/cue"
	"github.com/rigforge/rigforge/internal/diffview"
	oerrors "github.com/rigforge/rigforge/internal/errors"
	"github.com/rigforge/rigforge/internal/output"
	"github.com/rigforge/rigforge/internal/schema"
)

var (
	dumpOutputFlag string
	diffColorFlag  bool
)

// NewRigCmd creates the "rig" command group: vet, diff, dump, tree.
func NewRigCmd() *cobra.Command {
	rigCmd := &cobra.Command{
		Use:   "rig",
		Short: "Inspect and validate rig configuration files",
	}
	rigCmd.AddCommand(newRigVetCmd())
	rigCmd.AddCommand(newRigDiffCmd())
	rigCmd.AddCommand(newRigDumpCmd())
	rigCmd.AddCommand(newRigTreeCmd())
	return rigCmd
}

func newRigTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <rigfile>",
		Short: "Show every data file a resolved rig configuration references",
		Long: `Resolve a rig configuration's archetype chain and print the files it
references (guides, components, skin weights, deformers, and the rest of
the §3.1 data-file fields) as a tree, labeled by which field listed them.

Examples:
  rigforge rig tree rig.cue`,
		Args: cobra.ExactArgs(1),
		RunE: runRigTree,
	}
}

func runRigTree(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	loader := rigconfig.NewLoader(GetArchetypePaths()...)
	cfg, err := loader.Load(ctx, args[0])
	if err != nil {
		return asExitError(err)
	}

	files := make(map[string]string)
	addFiles := func(label string, paths []string) {
		for _, p := range paths {
			files[p] = label
		}
	}
	addFiles("model", cfg.ModelFile)
	addFiles("skeleton", cfg.SkeletonPos)
	addFiles("guides", cfg.Guides)
	addFiles("components", cfg.Components)
	addFiles("control shapes", cfg.ControlShapes)
	addFiles("psd", cfg.PSD)
	addFiles("skin weights", cfg.SkinWeights)
	addFiles("deform layers", cfg.DeformLayers)
	addFiles("deformers", cfg.Deformers)
	addFiles("shapes", cfg.Shapes)

	if len(files) == 0 {
		output.Println("no data files referenced")
		return nil
	}
	output.Println(output.RenderFileTree(cfg.RigName, files))
	return nil
}

func newRigVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet <rigfile>",
		Short: "Validate a rig configuration file against its schema",
		Long: `Validate a rig configuration file's shape against #RigConfig, then
resolve its full archetype chain to catch missing or cyclic baseArchetype
references.

Examples:
  rigforge rig vet rig.cue
  rigforge rig vet rig.yaml --archetype-path ./archetypes`,
		Args: cobra.ExactArgs(1),
		RunE: runRigVet,
	}
}

func runRigVet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	values := rigcue.NewValuesLoader(cuecontext.New())
	value, err := values.LoadFile(ctx, path)
	if err != nil {
		return asExitError(fmt.Errorf("%w: %v", oerrors.ErrConfiguration, err))
	}
	jsonBytes, err := value.MarshalJSON()
	if err != nil {
		return asExitError(fmt.Errorf("%w: %v", oerrors.ErrConfiguration, err))
	}
	if err := schema.ValidateFile(schema.KindRigConfig, jsonBytes); err != nil {
		return asExitError(fmt.Errorf("%w: %v", oerrors.ErrValidation, err))
	}

	loader := rigconfig.NewLoader(GetArchetypePaths()...)
	if _, err := loader.Load(ctx, path); err != nil {
		return asExitError(err)
	}

	output.Println("rig configuration is valid: " + path)
	return nil
}

func newRigDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <rigfile-a> <rigfile-b>",
		Short: "Show a semantic diff between two resolved rig configurations",
		Long: `Load and fully resolve (archetype-merged) two rig configuration files and
render a YAML-aware diff between them.

Examples:
  rigforge rig diff rig.cue rig.staging.cue`,
		Args: cobra.ExactArgs(2),
		RunE: runRigDiff,
	}
	cmd.Flags().BoolVar(&diffColorFlag, "color", true, "Colorize diff output")
	return cmd
}

func runRigDiff(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	loader := rigconfig.NewLoader(GetArchetypePaths()...)

	leftYAML, err := loadResolvedYAML(ctx, loader, args[0])
	if err != nil {
		return asExitError(err)
	}
	rightYAML, err := loadResolvedYAML(ctx, loader, args[1])
	if err != nil {
		return asExitError(err)
	}

	result, err := diffview.Compare(args[0], leftYAML, args[1], rightYAML, diffColorFlag)
	if err != nil {
		return asExitError(fmt.Errorf("%w: %v", oerrors.ErrConfiguration, err))
	}
	if !result.Changed {
		output.Println("no differences")
		return nil
	}
	output.Println(result.Report)
	return nil
}

func loadResolvedYAML(ctx context.Context, loader *rigconfig.Loader, path string) ([]byte, error) {
	cfg, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return k8syaml.JSONToYAML(jsonBytes)
}

func newRigDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <rigfile>",
		Short: "Print the fully resolved rig configuration",
		Long: `Resolve a rig configuration's archetype chain and print the flattened
result, for inspecting what a build will actually see.

Examples:
  rigforge rig dump rig.cue
  rigforge rig dump rig.cue -o json`,
		Args: cobra.ExactArgs(1),
		RunE: runRigDump,
	}
	cmd.Flags().StringVarP(&dumpOutputFlag, "output", "o", "yaml", "Output format: yaml, json")
	return cmd
}

func runRigDump(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	loader := rigconfig.NewLoader(GetArchetypePaths()...)
	cfg, err := loader.Load(ctx, args[0])
	if err != nil {
		return asExitError(err)
	}

	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return asExitError(err)
	}

	switch dumpOutputFlag {
	case "json":
		output.Println(string(jsonBytes))
	case "yaml":
		yamlBytes, err := k8syaml.JSONToYAML(jsonBytes)
		if err != nil {
			return asExitError(err)
		}
		output.Print(string(yamlBytes))
	default:
		return asExitError(fmt.Errorf("%w: unrecognized output format %q", oerrors.ErrConfiguration, dumpOutputFlag))
	}
	return nil
}
