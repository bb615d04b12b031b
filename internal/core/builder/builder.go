package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rigforge/rigforge/internal/core/component"
	rigconfig "github.com/rigforge/rigforge/internal/core/config"
	"github.com/rigforge/rigforge/internal/core/data"
	"github.com/rigforge/rigforge/internal/core/scene"
	"github.com/rigforge/rigforge/internal/output"
)

// topLevelGroups are the conventional top-level organizational containers
// a rig scene is split into (SUPPLEMENTED FEATURES item 1, grounded on
// rig_builder/builder.py's skeleton_root/model_root/guide/bind grouping).
// Each is tagged "<name>_root" so a resumed scene is recognized without
// recreating the group.
var topLevelGroups = []string{"skeleton", "model", "guide", "bind", "components"}

func defaultListDir(dir, ext string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadConfig resolves rigFilePath's archetype chain and stores the
// flattened RigConfig on the Builder.
// archetypePaths are extra search roots for bare baseArchetype names.
func (b *Builder) LoadConfig(ctx context.Context, rigFilePath string, archetypePaths ...string) error {
	b.loader = rigconfig.NewLoader(archetypePaths...)
	cfg, err := b.loader.Load(ctx, rigFilePath)
	if err != nil {
		return err
	}
	b.cfg = cfg
	b.runID = newRunID()
	return nil
}

// ensureRoot lazily creates the rig's root container and its top-level
// organizational groups the first time any pipeline step needs them.
func (b *Builder) ensureRoot(ctx context.Context) error {
	if !b.rootContainer.Empty() {
		return nil
	}
	name := "rig"
	if b.cfg != nil {
		if n, ok := b.GetRigData("rigName", nil).(string); ok && n != "" {
			name = n
		}
	}
	root, err := b.Scene.CreateContainer(ctx, name, "")
	if err != nil {
		return NewConfigurationError(fmt.Sprintf("creating root container: %v", err))
	}
	b.rootContainer = root

	for _, g := range topLevelGroups {
		tag := g + "_root"
		tagged, err := b.Scene.GetTagged(ctx, tag)
		if err != nil {
			return err
		}
		if len(tagged) > 0 {
			if g == "components" {
				b.componentsRoot = tagged[0]
			}
			continue
		}
		h, err := b.Scene.CreateContainer(ctx, g, root)
		if err != nil {
			return err
		}
		if err := b.Scene.Tag(ctx, h, tag); err != nil {
			return err
		}
		if g == "components" {
			b.componentsRoot = h
		}
	}
	return nil
}

// Run executes the full pipeline in the exact order rig_builder/builder.py
// drives it: pre-script, model import, joint load, component
// instantiation and every phase in order, guide/control/deform data, and
// (when configured) publish. Stops and returns the first error; callers
// inspect it with ExitCode for the CLI exit status.
func (b *Builder) Run(ctx context.Context) error {
	if b.cfg == nil {
		return NewConfigurationError("Run called before LoadConfig")
	}
	steps := []struct {
		phase string
		run   func(context.Context) error
	}{
		{"pre_script", b.runScripts(rigconfig.ScriptPre)},
		{"import_model", b.importModel},
		{"load_joints", b.LoadJoints},
		{"load_components", b.loadComponentEntries},
		{"initialize", b.Initialize},
		{"guide", b.Guide},
		{"load_guide_data", b.LoadGuides},
		{"build", b.Build},
		{"connect", b.Connect},
		{"finalize", b.Finalize},
		{"load_pose_readers", b.LoadPoseReaders},
		{"post_script", b.runScripts(rigconfig.ScriptPost)},
		{"load_control_shapes", b.LoadControlShapes},
		{"load_deform_data", b.loadDeformData},
	}

	for _, s := range steps {
		if err := timePhase(s.phase, func() error { return s.run(ctx) }); err != nil {
			return fmt.Errorf("%s: %w", s.phase, err)
		}
	}
	componentCount.Set(float64(len(b.components)))

	if out, ok := b.GetRigData("outputFile", "").(string); ok && out != "" {
		if err := b.runScripts(rigconfig.ScriptPub)(ctx); err != nil {
			return fmt.Errorf("pub_script: %w", err)
		}
		if err := b.Publish(ctx); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}
	return nil
}

// RunTo drives the pipeline only through the component phases up to and
// including target, stopping before anything target's successor phase
// would need (SUPPLEMENTED FEATURES item 2, a dry-run/inspection mode).
// Data-load and script steps that precede a phase still run; steps that
// follow target do not.
func (b *Builder) RunTo(ctx context.Context, target component.Phase) error {
	if b.cfg == nil {
		return NewConfigurationError("RunTo called before LoadConfig")
	}
	ordered := []struct {
		phase component.Phase
		run   func(context.Context) error
	}{
		{component.Initialize, func(ctx context.Context) error {
			if err := b.runScripts(rigconfig.ScriptPre)(ctx); err != nil {
				return err
			}
			if err := b.importModel(ctx); err != nil {
				return err
			}
			if err := b.LoadJoints(ctx); err != nil {
				return err
			}
			if err := b.loadComponentEntries(ctx); err != nil {
				return err
			}
			return b.Initialize(ctx)
		}},
		{component.Guide, func(ctx context.Context) error {
			if err := b.Guide(ctx); err != nil {
				return err
			}
			return b.LoadGuides(ctx)
		}},
		{component.Build, b.Build},
		{component.Connect, b.Connect},
		{component.Finalize, b.Finalize},
		{component.Optimize, b.Optimize},
	}
	for _, step := range ordered {
		if err := step.run(ctx); err != nil {
			return err
		}
		if step.phase >= target {
			return nil
		}
	}
	return nil
}

func (b *Builder) runScripts(key rigconfig.ScriptKey) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, path := range b.cfg.CollectScripts(key) {
			if err := b.ScriptRunner(path); err != nil {
				return fmt.Errorf("script %s: %w", path, err)
			}
		}
		return nil
	}
}

func (b *Builder) importModel(ctx context.Context) error {
	if err := b.ensureRoot(ctx); err != nil {
		return err
	}
	for _, path := range b.cfg.ModelFile {
		if err := b.Scene.ImportFile(ctx, path, ""); err != nil {
			return fmt.Errorf("importing model %s: %w", path, err)
		}
	}
	return nil
}

// LoadJoints loads every file in skeletonPos as Joint data.
func (b *Builder) LoadJoints(ctx context.Context) error { return b.loadEach(ctx, "Joint", b.cfg.SkeletonPos) }

// LoadGuides loads every file in guides as Guide data.
func (b *Builder) LoadGuides(ctx context.Context) error { return b.loadEach(ctx, "Guide", b.cfg.Guides) }

// LoadControlShapes loads every file in controlShapes as ControlShape data.
func (b *Builder) LoadControlShapes(ctx context.Context) error {
	return b.loadEach(ctx, "ControlShape", b.cfg.ControlShapes)
}

// LoadPoseReaders loads every file in psd as PSD (pose-space-deformation
// reader) data.
func (b *Builder) LoadPoseReaders(ctx context.Context) error { return b.loadEach(ctx, "PSD", b.cfg.PSD) }

// LoadDeformLayers loads every file in deformLayers as DeformLayer data.
func (b *Builder) LoadDeformLayers(ctx context.Context) error {
	return b.loadEach(ctx, "DeformLayer", b.cfg.DeformLayers)
}

// LoadDeformers loads every file in deformers as Deformer data.
func (b *Builder) LoadDeformers(ctx context.Context) error {
	return b.loadEach(ctx, "Deformer", b.cfg.Deformers)
}

// LoadShapes loads every file in shapes as Shape data.
func (b *Builder) LoadShapes(ctx context.Context) error {
	return b.loadEach(ctx, "Shape", b.cfg.Shapes)
}

// LoadSkinWeights loads every directory in skinWeights as SkinWeights data,
// one file per entity.
func (b *Builder) LoadSkinWeights(ctx context.Context) error {
	for _, dir := range b.cfg.SkinWeights {
		if err := data.LoadDirectory(b.DataRegistry, "SkinWeights", b.Scene, dir, ".json", b.ListDir); err != nil {
			return fmt.Errorf("loading skin weights %s: %w", dir, err)
		}
	}
	return nil
}

func (b *Builder) loadDeformData(ctx context.Context) error {
	if err := b.LoadSkinWeights(ctx); err != nil {
		return err
	}
	if err := b.LoadDeformLayers(ctx); err != nil {
		return err
	}
	if err := b.LoadDeformers(ctx); err != nil {
		return err
	}
	return b.LoadShapes(ctx)
}

func (b *Builder) loadEach(ctx context.Context, dataType string, paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			output.Warn("data file missing, skipping", "dataType", dataType, "path", path)
			continue
		}
		if err := data.Load(b.DataRegistry, dataType, b.Scene, path); err != nil {
			return NewDataFileTypeMismatchError(path, err)
		}
	}
	return nil
}

// loadComponentEntries reads every file in cfg.Components and instantiates
// a component.Instance per entry. Entries are
// merged across files nearest-first: the first file declaring a given
// name wins, matching mergeChain's archetype precedence.
func (b *Builder) loadComponentEntries(ctx context.Context) error {
	if err := b.ensureRoot(ctx); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, path := range b.cfg.Components {
		entries, err := rigconfig.LoadComponents(path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if seen[entry.Name] {
				continue
			}
			seen[entry.Name] = true
			inst, err := b.ComponentTypes.NewFromEntry(entry)
			if err != nil {
				return NewConfigurationError(fmt.Sprintf("component %q: %v", entry.Name, err))
			}
			b.components = append(b.components, inst)
			b.byName[entry.Name] = inst
		}
	}
	return nil
}

// Initialize runs INITIALIZE on every instantiated component, in
// declaration order.
func (b *Builder) Initialize(ctx context.Context) error {
	return b.forEachComponent(ctx, "INITIALIZE", func(ctx context.Context, c *component.Instance) error {
		return c.Initialize(ctx, b.Scene, b.componentsRoot)
	})
}

// Guide runs GUIDE on every component.
func (b *Builder) Guide(ctx context.Context) error {
	return b.forEachComponent(ctx, "GUIDE", func(ctx context.Context, c *component.Instance) error {
		return c.Guide(ctx, b.Scene)
	})
}

// Build runs BUILD on every component.
func (b *Builder) Build(ctx context.Context) error {
	return b.forEachComponent(ctx, "BUILD", func(ctx context.Context, c *component.Instance) error {
		return c.BuildPhase(ctx, b.Scene)
	})
}

// Connect runs CONNECT on every component, resolving each component's
// rigParent reference among already-instantiated components by name (spec
// §4.3 "rigParent semantics"). An unresolved rigParent is logged as a
// warning and does not stop the run.
func (b *Builder) Connect(ctx context.Context) error {
	resolve := func(name string) (scene.Handle, bool) {
		target, ok := b.byName[name]
		if !ok {
			return "", false
		}
		return target.Container(), true
	}
	return b.forEachComponent(ctx, "CONNECT", func(ctx context.Context, c *component.Instance) error {
		if err := c.Connect(ctx, b.Scene, resolve); err != nil {
			return err
		}
		if c.RigParent != "" {
			if _, ok := c.RigParentHandle(); !ok {
				output.Warn("rigParent not resolved", "component", c.Name, "rigParent", c.RigParent)
			}
		}
		return nil
	})
}

// Finalize runs FINALIZE on every component.
func (b *Builder) Finalize(ctx context.Context) error {
	return b.forEachComponent(ctx, "FINALIZE", func(ctx context.Context, c *component.Instance) error {
		return c.Finalize(ctx, b.Scene)
	})
}

// Optimize runs the optional OPTIMIZE pass on every component. Not part of
// Run's default pipeline; callers invoke it
// explicitly, or via RunTo(component.Optimize).
func (b *Builder) Optimize(ctx context.Context) error {
	return b.forEachComponent(ctx, "OPTIMIZE", func(ctx context.Context, c *component.Instance) error {
		return c.OptimizePhase(ctx, b.Scene)
	})
}

func (b *Builder) forEachComponent(ctx context.Context, phase string, run func(context.Context, *component.Instance) error) error {
	for _, c := range b.components {
		if err := run(ctx, c); err != nil {
			return NewComponentPhaseError(c.Name, phase, err)
		}
	}
	return nil
}

// BuildSingleComponent destroys and rebuilds one named component through
// every phase, leaving every other component untouched (SUPPLEMENTED
// FEATURES item 2, "component build-single" CLI command). typ is only
// needed the first time the name is built; on a rebuild the existing
// Entry's Type is reused.
func (b *Builder) BuildSingleComponent(ctx context.Context, name, typ string) error {
	if err := b.ensureRoot(ctx); err != nil {
		return err
	}
	inst, existing := b.byName[name]
	if existing {
		if err := inst.Destroy(ctx, b.Scene); err != nil {
			return err
		}
		entry := inst.Entry
		next, err := b.ComponentTypes.NewFromEntry(entry)
		if err != nil {
			return NewConfigurationError(fmt.Sprintf("component %q: %v", name, err))
		}
		for i, c := range b.components {
			if c == inst {
				b.components[i] = next
			}
		}
		inst = next
	} else {
		entry, err := component.EntryFromJSON(name, typ, nil, "", "", nil)
		if err != nil {
			return err
		}
		next, err := b.ComponentTypes.NewFromEntry(entry)
		if err != nil {
			return NewConfigurationError(fmt.Sprintf("component %q: %v", name, err))
		}
		inst = next
		b.components = append(b.components, inst)
	}
	b.byName[name] = inst

	resolve := func(n string) (scene.Handle, bool) {
		target, ok := b.byName[n]
		if !ok {
			return "", false
		}
		return target.Container(), true
	}
	phases := []struct {
		name string
		run  func(context.Context, *component.Instance) error
	}{
		{"INITIALIZE", func(ctx context.Context, c *component.Instance) error {
			return c.Initialize(ctx, b.Scene, b.componentsRoot)
		}},
		{"GUIDE", func(ctx context.Context, c *component.Instance) error { return c.Guide(ctx, b.Scene) }},
		{"BUILD", func(ctx context.Context, c *component.Instance) error { return c.BuildPhase(ctx, b.Scene) }},
		{"CONNECT", func(ctx context.Context, c *component.Instance) error { return c.Connect(ctx, b.Scene, resolve) }},
		{"FINALIZE", func(ctx context.Context, c *component.Instance) error { return c.Finalize(ctx, b.Scene) }},
	}
	for _, p := range phases {
		if err := p.run(ctx, inst); err != nil {
			return NewComponentPhaseError(name, p.name, err)
		}
	}
	return nil
}

// SaveKind gathers the data kind's currently-tagged scene entities and
// writes them into fileStack via the layered merge engine.
// method/fileName follow GatherLayeredSaveData's rules: new and overwrite
// require a non-empty fileName; merge appends unclaimed keys to the bottom
// (highest-priority, last) file of fileStack.
func (b *Builder) SaveKind(ctx context.Context, dataType string, fileStack []string, method data.MergeMethod, fileName string) error {
	handles, err := b.Scene.GetTagged(ctx, dataType)
	if err != nil {
		return err
	}
	keys := make([]string, len(handles))
	for i, h := range handles {
		keys[i] = h.String()
	}
	plan, err := data.GatherLayeredSaveData(b.DataRegistry, dataType, fileStack, keys, method, fileName)
	if err != nil {
		return err
	}
	return data.PerformLayeredSave(b.DataRegistry, dataType, b.Scene, plan)
}

// SaveJoints saves every Joint-tagged entity into skeletonPos's file stack.
func (b *Builder) SaveJoints(ctx context.Context) error {
	return b.SaveKind(ctx, "Joint", b.cfg.SkeletonPos, data.MethodMerge, "")
}

// SaveGuides saves every Guide-tagged entity into guides's file stack.
func (b *Builder) SaveGuides(ctx context.Context) error {
	return b.SaveKind(ctx, "Guide", b.cfg.Guides, data.MethodMerge, "")
}

// SaveControlShapes saves every ControlShape-tagged entity into
// controlShapes's file stack.
func (b *Builder) SaveControlShapes(ctx context.Context) error {
	return b.SaveKind(ctx, "ControlShape", b.cfg.ControlShapes, data.MethodMerge, "")
}

// SavePoseReaders saves every PSD-tagged entity into psd's file stack.
func (b *Builder) SavePoseReaders(ctx context.Context) error {
	return b.SaveKind(ctx, "PSD", b.cfg.PSD, data.MethodMerge, "")
}

// SaveDeformLayers saves every DeformLayer-tagged entity into
// deformLayers's file stack.
func (b *Builder) SaveDeformLayers(ctx context.Context) error {
	return b.SaveKind(ctx, "DeformLayer", b.cfg.DeformLayers, data.MethodMerge, "")
}

// componentFileEnvelope mirrors the on-disk shape of a components file,
// used only by SaveComponents to re-serialize the Builder's current
// top-level component list.
type componentFileEnvelope struct {
	DataType string                  `json:"dataType"`
	Data     []componentFileEntryOut `json:"data"`
}

type componentFileEntryOut struct {
	Name         string                        `json:"name"`
	Type         string                        `json:"type"`
	Input        []string                      `json:"input,omitempty"`
	RigParent    string                        `json:"rigParent,omitempty"`
	ComponentTag string                        `json:"componentTag,omitempty"`
	Parameters   map[string]component.RawParam `json:"parameters,omitempty"`
}

// SaveComponents re-serializes every top-level component's Entry back to
// path, in the components file envelope. Hidden sub-components
// are not written, matching the Builder's own top-level listing.
func (b *Builder) SaveComponents(ctx context.Context, path string) error {
	env := componentFileEnvelope{DataType: data.AbstractDataType}
	for _, c := range b.TopLevelComponents() {
		params := make(map[string]component.RawParam, len(c.Parameters))
		for k, v := range c.Parameters {
			params[k] = v.ToRawParam()
		}
		env.Data = append(env.Data, componentFileEntryOut{
			Name: c.Name, Type: c.Type, Input: c.Input,
			RigParent: c.RigParent, ComponentTag: c.ComponentTag, Parameters: params,
		})
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return NewPublishError("writing components file", err)
	}
	return nil
}

// Publish writes the scene out to the configured outputFile and archives a
// copy under versions/ as name_vNNN.ext, auto-incrementing NNN past every
// existing version (spec §4.4 publish, grounded on
// rig_builder/builder.py's publish/versioning step).
func (b *Builder) Publish(ctx context.Context) error {
	outFile, _ := b.GetRigData("outputFile", "").(string)
	if outFile == "" {
		return NewPublishError("publish requires outputFile", fmt.Errorf("outputFile unset"))
	}

	dir := filepath.Dir(outFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewPublishError("creating output directory", err)
	}
	if err := b.Scene.SaveScene(ctx, outFile); err != nil {
		return NewPublishError("saving scene to "+outFile, err)
	}

	versionsDir := filepath.Join(dir, "versions")
	if err := os.MkdirAll(versionsDir, 0o755); err != nil {
		return NewPublishError("creating versions directory", err)
	}
	ext := filepath.Ext(outFile)
	base := strings.TrimSuffix(filepath.Base(outFile), ext)
	next := nextVersionNumber(versionsDir, base, ext)
	versionedPath := filepath.Join(versionsDir, fmt.Sprintf("%s_v%03d%s", base, next, ext))
	if err := b.Scene.SaveScene(ctx, versionedPath); err != nil {
		return NewPublishError("saving version to "+versionedPath, err)
	}
	return nil
}

func nextVersionNumber(versionsDir, base, ext string) int {
	entries, err := os.ReadDir(versionsDir)
	if err != nil {
		return 1
	}
	prefix := base + "_v"
	highest := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		n, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}
