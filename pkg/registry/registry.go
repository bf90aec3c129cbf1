package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/agrimind/pkg/domain"
)

// Registry manages the available actions.
// A name maps to exactly one ActionSpec for the lifetime of the registry.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*domain.ActionSpec
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]*domain.ActionSpec),
	}
}

// Register adds an action to the registry.
// The spec is validated and copied; later changes to the caller's value
// have no effect. Registering a name twice returns domain.ErrActionExists.
func (r *Registry) Register(spec domain.ActionSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actions[spec.Name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrActionExists, spec.Name)
	}
	r.actions[spec.Name] = spec.Clone()
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(specs ...domain.ActionSpec) {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns a copy of the named action.
// Returns domain.ErrActionNotFound if the name is unknown.
func (r *Registry) Lookup(name string) (*domain.ActionSpec, error) {
	r.mu.RLock()
	spec, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrActionNotFound, name)
	}
	return spec.Clone(), nil
}

// Names returns the registered action names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.actions))
}

// List returns copies of all actions sorted by name.
func (r *Registry) List() []*domain.ActionSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ActionSpec, 0, len(r.actions))
	for _, name := range slices.Sorted(maps.Keys(r.actions)) {
		out = append(out, r.actions[name].Clone())
	}
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}
