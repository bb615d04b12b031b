package component

import (
	"context"
	"fmt"

	"github.com/rigforge/rigforge/internal/core/scene"
)

// Entry is the serialized form of a component: the shape read
// out of a rig's components data file.
type Entry struct {
	Name         string
	Type         string // fully-qualified handler tag "module.ClassName"
	Input        []string
	RigParent    string
	ComponentTag string
	Parameters   map[string]Value
}

// RawParam is the {value, dataType} wire shape of one parameter entry,
// exported so callers decoding a components file can build the raw dict
// without depending on an unexported type.
type RawParam struct {
	Value any    `json:"value"`
	Type  string `json:"dataType"`
}

// EntryFromJSON decodes the {value, dataType} parameter shape into a Value
// map, given the already-unmarshaled raw parameter dict.
func EntryFromJSON(name, typ string, input []string, rigParent, componentTag string, rawParams map[string]RawParam) (Entry, error) {
	params := make(map[string]Value, len(rawParams))
	for k, raw := range rawParams {
		v, err := valueFromSerialized(serialized{Value: raw.Value, Type: raw.Type})
		if err != nil {
			return Entry{}, fmt.Errorf("component %q parameter %q: %w", name, k, err)
		}
		params[k] = v
	}
	return Entry{
		Name: name, Type: typ, Input: input,
		RigParent: rigParent, ComponentTag: componentTag, Parameters: params,
	}, nil
}

// Hooks is the set of phase methods a concrete component type implements.
// Embed BaseHooks to default every phase to a no-op and override only what
// the component needs.
type Hooks interface {
	OnInitialize(ctx context.Context, inst *Instance) error
	OnGuide(ctx context.Context, inst *Instance) error
	OnBuild(ctx context.Context, inst *Instance) error
	OnConnect(ctx context.Context, inst *Instance) error
	OnFinalize(ctx context.Context, inst *Instance) error
	OnOptimize(ctx context.Context, inst *Instance) error
}

// BaseHooks implements Hooks with no-op phases. Concrete component types
// embed it so they only need to override the phases they use.
type BaseHooks struct{}

func (BaseHooks) OnInitialize(context.Context, *Instance) error { return nil }
func (BaseHooks) OnGuide(context.Context, *Instance) error      { return nil }
func (BaseHooks) OnBuild(context.Context, *Instance) error      { return nil }
func (BaseHooks) OnConnect(context.Context, *Instance) error    { return nil }
func (BaseHooks) OnFinalize(context.Context, *Instance) error   { return nil }
func (BaseHooks) OnOptimize(context.Context, *Instance) error   { return nil }

// Instance is the runtime form of a component: created by the
// Builder from an Entry, advanced phase-by-phase, destroyed by deleting
// its container.
type Instance struct {
	Entry

	// Hidden marks a sub-component appended to a parent's ComponentList
	// during INITIALIZE; the Builder excludes hidden components from its
	// top-level listing.
	Hidden bool

	hooks     Hooks
	phase     Phase
	container scene.Handle
	metaNode  scene.Handle
	params    ParameterStore

	// Anchors cached by concrete hooks during BUILD: root/params/spaces/
	// control hierarchy handles. Stored generically since the
	// core treats anchor identity as opaque to this package.
	Anchors map[string]scene.Handle

	// ComponentList holds child sub-components for nested compositions.
	ComponentList []*Instance

	rigParentHandle scene.Handle
	rigParentFound  bool
}

// NewInstance constructs a runtime Instance from a serialized Entry and
// the Hooks implementation registered for its Type.
func NewInstance(entry Entry, hooks Hooks) *Instance {
	return &Instance{
		Entry:   entry,
		hooks:   hooks,
		phase:   Unbuilt,
		Anchors: make(map[string]scene.Handle),
	}
}

// Phase returns the component's current buildStep.
func (c *Instance) Phase() Phase { return c.phase }

// Container returns the component's owning scene group, valid only after
// INITIALIZE.
func (c *Instance) Container() scene.Handle { return c.container }

// Params returns the component's parameter store, valid only after
// INITIALIZE.
func (c *Instance) Params() ParameterStore { return c.params }

// SetRigParentHandle records the resolved handle of this component's
// rigParent reference, looked up by the Builder at CONNECT time (spec
// §4.3 "rigParent semantics").
func (c *Instance) SetRigParentHandle(h scene.Handle, found bool) {
	c.rigParentHandle = h
	c.rigParentFound = found
}

// RigParentHandle returns the handle resolved for this component's
// rigParent, and whether resolution succeeded.
func (c *Instance) RigParentHandle() (scene.Handle, bool) {
	return c.rigParentHandle, c.rigParentFound
}

// AddSubComponent appends a hidden child component during INITIALIZE.
// Returns an error if child is (transitively) an ancestor of c, forbidding
// a nesting cycle.
func (c *Instance) AddSubComponent(child *Instance) error {
	if c.phase != Initialize {
		return fmt.Errorf("component %q: sub-components may only be added during INITIALIZE", c.Name)
	}
	if child == c || child.isAncestorOf(c) {
		return fmt.Errorf("component %q: cannot add ancestor %q as sub-component", c.Name, child.Name)
	}
	child.Hidden = true
	c.ComponentList = append(c.ComponentList, child)
	return nil
}

func (c *Instance) isAncestorOf(target *Instance) bool {
	for _, child := range c.ComponentList {
		if child == target || child.isAncestorOf(target) {
			return true
		}
	}
	return false
}

// step is the shared phase-advance machinery: every public phase entry
// point (Initialize, Guide, ...) calls step with the expected predecessor
// phase and the hook to run. Re-entry when c.phase is already >= want is a
// no-op (spec P6 phase monotonicity); invoking a phase out of order is an
// error.
func (c *Instance) step(ctx context.Context, want Phase, run func(context.Context, *Instance) error) error {
	if c.phase >= want {
		return nil // already advanced past this phase: no-op re-entry
	}
	if c.phase != want-1 {
		return fmt.Errorf("component %q: cannot enter phase %s from %s", c.Name, want, c.phase)
	}
	if err := run(ctx, c); err != nil {
		return err
	}
	c.phase = want
	return nil
}

// Initialize binds parameters, reserves a container, and declares
// sub-components. s and ctx provide the scene
// facade; parent is the handle under which the component's container is
// created (typically a rig-wide "components" group).
func (c *Instance) Initialize(ctx context.Context, s scene.Scene, parent scene.Handle) error {
	return c.step(ctx, Initialize, func(ctx context.Context, c *Instance) error {
		container, err := s.CreateContainer(ctx, c.Name, parent)
		if err != nil {
			return fmt.Errorf("creating container for %q: %w", c.Name, err)
		}
		if err := s.Tag(ctx, container, c.Type); err != nil {
			return fmt.Errorf("tagging container for %q: %w", c.Name, err)
		}
		if err := s.Tag(ctx, container, "rigforgeComponent"); err != nil {
			return err
		}
		c.container = container

		meta, err := s.CreateContainer(ctx, c.Name+"_meta", container)
		if err != nil {
			return fmt.Errorf("creating metaNode for %q: %w", c.Name, err)
		}
		c.metaNode = meta
		c.params = NewSceneStore(ctx, s, meta)

		// The metaNode is created fresh on every INITIALIZE (a rebuild
		// after Destroy included) and seeded from the Entry's parameters;
		// no earlier metaNode values are read back.
		for name, v := range c.Parameters {
			if err := c.params.Define(name, v); err != nil {
				return fmt.Errorf("defining parameter %q on %q: %w", name, c.Name, err)
			}
		}

		if c.hooks != nil {
			return c.hooks.OnInitialize(ctx, c)
		}
		return nil
	})
}

// Guide creates editable guide transforms.
func (c *Instance) Guide(ctx context.Context, s scene.Scene) error {
	return c.step(ctx, Guide, func(ctx context.Context, c *Instance) error {
		if c.hooks != nil {
			return c.hooks.OnGuide(ctx, c)
		}
		return nil
	})
}

// BuildPhase creates the deformation- and control-graph internal to this
// component. Named BuildPhase, not Build, so the method name is distinct
// from this package's Build phase constant.
func (c *Instance) BuildPhase(ctx context.Context, s scene.Scene) error {
	return c.step(ctx, Build, func(ctx context.Context, c *Instance) error {
		if c.hooks != nil {
			return c.hooks.OnBuild(ctx, c)
		}
		return nil
	})
}

// Connect hooks this component's external inputs to rigParent-named
// outputs of other components. resolveRigParent looks
// up c.RigParent among already-built components; ok is false if the name
// is empty or unresolved (spec's UnresolvedRigParent — a warning, not
// fatal).
func (c *Instance) Connect(ctx context.Context, s scene.Scene, resolveRigParent func(name string) (scene.Handle, bool)) error {
	return c.step(ctx, Connect, func(ctx context.Context, c *Instance) error {
		if c.RigParent != "" {
			h, ok := resolveRigParent(c.RigParent)
			c.SetRigParentHandle(h, ok)
			if ok {
				if err := s.Parent(ctx, c.container, h); err != nil {
					return fmt.Errorf("parenting %q to rigParent %q: %w", c.Name, c.RigParent, err)
				}
			}
		}
		if c.hooks != nil {
			return c.hooks.OnConnect(ctx, c)
		}
		return nil
	})
}

// Finalize performs cosmetic lock-down and scaffolding cleanup.
func (c *Instance) Finalize(ctx context.Context, s scene.Scene) error {
	return c.step(ctx, Finalize, func(ctx context.Context, c *Instance) error {
		if c.hooks != nil {
			return c.hooks.OnFinalize(ctx, c)
		}
		return nil
	})
}

// OptimizePhase performs the optional performance pass. Named
// OptimizePhase for the same reason as BuildPhase.
func (c *Instance) OptimizePhase(ctx context.Context, s scene.Scene) error {
	return c.step(ctx, Optimize, func(ctx context.Context, c *Instance) error {
		if c.hooks != nil {
			return c.hooks.OnOptimize(ctx, c)
		}
		return nil
	})
}

// Destroy deletes the component's container, removing every scene node it
// created, and
// resets its phase to Unbuilt.
func (c *Instance) Destroy(ctx context.Context, s scene.Scene) error {
	if c.container.Empty() {
		return nil
	}
	if err := s.DeleteContainer(ctx, c.container); err != nil {
		return err
	}
	c.container = ""
	c.metaNode = ""
	c.params = nil
	c.phase = Unbuilt
	return nil
}
