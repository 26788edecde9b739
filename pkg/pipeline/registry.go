package pipeline

import (
	"fmt"
	"sort"
)

// Registry is a caller-owned catalog of morphs by name, used to resolve
// declarative pipeline definitions. There is no process-wide registry:
// callers construct one, register their morphs at setup time, and pass
// it by handle wherever resolution happens, keeping pipelines
// independently constructible and testable.
type Registry struct {
	morphs map[string]*Morph
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{morphs: make(map[string]*Morph)}
}

// Register adds a morph. Re-registering a name is an error; replacing a
// live morph under a resolver's feet is never what a caller wants.
func (r *Registry) Register(m *Morph) error {
	if m == nil {
		return fmt.Errorf("pipeline: cannot register nil morph")
	}
	if _, exists := r.morphs[m.name]; exists {
		return fmt.Errorf("pipeline: morph %q already registered", m.name)
	}
	r.morphs[m.name] = m
	return nil
}

// MustRegister is Register that panics, for setup-time registration of
// package-level morphs.
func (r *Registry) MustRegister(ms ...*Morph) *Registry {
	for _, m := range ms {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

// Get looks up a morph by name.
func (r *Registry) Get(name string) (*Morph, bool) {
	m, ok := r.morphs[name]
	return m, ok
}

// Names returns the registered morph names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.morphs))
	for n := range r.morphs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
