// Package builder implements the Builder Orchestrator: resolving a rig
// configuration and its archetype chain, instantiating components,
// driving them through the phase state machine, and invoking the layered
// data merge engine at the configured pipeline stages.
//
// Orchestration style (phase sequencing, fatal-vs-logged error handling,
// deterministic ordering, warning collection) follows the same pattern as
// rig_builder/builder.py.
package builder

import (
	"time"

	"github.com/google/uuid"

	"github.com/rigforge/rigforge/internal/core/component"
	rigconfig "github.com/rigforge/rigforge/internal/core/config"
	"github.com/rigforge/rigforge/internal/core/data"
	"github.com/rigforge/rigforge/internal/core/scene"
)

// ScriptRunner executes one external phase script (preScript, postScript,
// pubScript). Script execution is a host concern outside the core, and
// script content is never interpreted here; the default runner does nothing
// and succeeds, so a run with no host-supplied runner still exercises the
// full pipeline shape.
type ScriptRunner func(path string) error

// Builder resolves one rig configuration and drives it through the full
// pipeline. Not safe for concurrent use, nor for running two pipelines
// against the same Builder concurrently — callers must not invoke a second
// pipeline while one is running.
type Builder struct {
	Scene          scene.Scene
	DataRegistry   *data.Registry
	ComponentTypes *component.Registry
	ScriptRunner   ScriptRunner

	// ListDir lists files under dir matching ext, used by LoadDirectory
	// for multi-file data kinds (skin weights). Defaults to a real
	// filesystem walk; tests can override it for a fake scene with no
	// real files on disk.
	ListDir func(dir, ext string) ([]string, error)

	cfg    *rigconfig.RigConfig
	loader *rigconfig.Loader

	components     []*component.Instance
	byName         map[string]*component.Instance
	rootContainer  scene.Handle
	componentsRoot scene.Handle

	runID string
}

// New constructs a Builder against a host scene, the data-kind registry
// (data.DefaultRegistry() for production use), and the component-type
// registry populated by the caller's concrete component registrations.
func New(s scene.Scene, dataReg *data.Registry, compReg *component.Registry) *Builder {
	return &Builder{
		Scene:          s,
		DataRegistry:   dataReg,
		ComponentTypes: compReg,
		ScriptRunner:   defaultScriptRunner,
		ListDir:        defaultListDir,
		byName:         make(map[string]*component.Instance),
	}
}

// RigConfig returns the loaded rig configuration, or nil before LoadConfig.
func (b *Builder) RigConfig() *rigconfig.RigConfig { return b.cfg }

// GetRigData is the typed rig-config lookup: returns def when key is
// unrecognized or unset.
func (b *Builder) GetRigData(key string, def any) any {
	if b.cfg == nil {
		return def
	}
	return b.cfg.Get(key, def)
}

// TopLevelComponents returns every component the Builder instantiated
// directly from the components file, excluding sub-components appended
// during INITIALIZE; the Builder does not list those at the top level.
func (b *Builder) TopLevelComponents() []*component.Instance {
	var out []*component.Instance
	for _, c := range b.components {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Component looks up an instantiated component by name.
func (b *Builder) Component(name string) (*component.Instance, bool) {
	c, ok := b.byName[name]
	return c, ok
}

func defaultScriptRunner(string) error { return nil }

func timePhase(phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	phaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	return err
}

func newRunID() string { return uuid.NewString() }
