package data

import (
	"fmt"
	"sync"

	oerrors "github.com/rigforge/rigforge/internal/errors"
)

// Factory produces a fresh, empty Handler instance for one data kind.
type Factory func() Handler

// Registry implements the DataModule Registry: a process-wide,
// lazily-populated mapping from data-kind tag to a factory. The built-in
// kinds are registered by registerBuiltinKinds (kinds.go), which
// DefaultRegistry calls once on first use; a later registration of the same
// tag replaces the earlier one, the same last-wins collision behavior a
// reflective directory scan would produce.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Factory
}

// NewRegistry returns an empty registry. Most callers use DefaultRegistry,
// which is pre-populated with every built-in data kind; NewRegistry exists
// for tests that want to control exactly which kinds are visible.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Factory)}
}

// Register adds or replaces the factory for tag. Name collisions are
// last-wins, matching the source's flat directory scan.
func (r *Registry) Register(tag string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[tag] = factory
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[tag]
	return ok
}

// NewInstance produces a fresh handler for tag. Fails with
// ErrUnknownDataType when tag is not registered.
func (r *Registry) NewInstance(tag string) (Handler, error) {
	r.mu.RLock()
	factory, ok := r.handlers[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", oerrors.ErrUnknownDataType, tag)
	}
	return factory(), nil
}

// ListHandlers returns every registered tag, sorted.
func (r *Registry) ListHandlers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		tags = append(tags, t)
	}
	return sortedStrings(tags)
}

func sortedStrings(s []string) []string {
	out := append([]string(nil), s...)
	sortInPlace(out)
	return out
}

var defaultRegistryOnce sync.Once
var defaultRegistry *Registry

// DefaultRegistry returns the process-wide registry pre-populated with
// every built-in data kind (joint, guide, controlshape, skinweights, psd,
// deformlayer, deformer, shape, abstract).
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltinKinds(defaultRegistry)
	})
	return defaultRegistry
}
