package checklist

import (
	"fmt"
	"sort"
)

// Registry holds the checklists available to the program, keyed by name.
type Registry struct {
	order []string
	defs  map[string]*Definition
}

// NewRegistry creates a Registry from definitions in display order.
// Two definitions with the same name yield a *DefinitionError.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := r.add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a Registry with the built-in checklists followed
// by extra definitions (typically loaded from the config file).
func DefaultRegistry(extra ...*Definition) (*Registry, error) {
	return NewRegistry(append(Builtin(), extra...)...)
}

func (r *Registry) add(d *Definition) error {
	if _, dup := r.defs[d.Name()]; dup {
		return &DefinitionError{Checklist: d.Name(), Err: ErrDuplicateName}
	}
	r.defs[d.Name()] = d
	r.order = append(r.order, d.Name())
	return nil
}

// Lookup returns the checklist with the given name.
func (r *Registry) Lookup(name string) (*Definition, error) {
	d, ok := r.defs[name]
	if !ok {
		known := append([]string(nil), r.order...)
		sort.Strings(known)
		return nil, fmt.Errorf("unknown checklist %q (available: %v)", name, known)
	}
	return d, nil
}

// All returns every checklist in display order.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, len(r.order))
	for i, name := range r.order {
		out[i] = r.defs[name]
	}
	return out
}
