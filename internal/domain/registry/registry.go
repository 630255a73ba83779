package registry

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/esb/internal/domain"
)

// Binding is the physical location of a record kind.
type Binding struct {
	Index string
	Type  string
}

// Registry maps record kinds to bindings. Immutable after New.
type Registry struct {
	bindings map[string]Binding
}

// New builds a registry from kind->type and kind->index maps.
// Both maps must name the same kinds with non-empty values.
func New(types, indexes map[string]string) (*Registry, error) {
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: no indexes configured", domain.ErrInvalidConfiguration)
	}
	bindings := make(map[string]Binding, len(indexes))
	for kind, index := range indexes {
		if kind == "" || index == "" {
			return nil, fmt.Errorf("%w: empty index binding for kind %q", domain.ErrInvalidConfiguration, kind)
		}
		typ, ok := types[kind]
		if !ok || typ == "" {
			return nil, fmt.Errorf("%w: no type for kind %q", domain.ErrInvalidConfiguration, kind)
		}
		bindings[kind] = Binding{Index: index, Type: typ}
	}
	for kind := range types {
		if _, ok := indexes[kind]; !ok {
			return nil, fmt.Errorf("%w: no index for kind %q", domain.ErrInvalidConfiguration, kind)
		}
	}
	return &Registry{bindings: bindings}, nil
}

// Resolve returns the binding of kind.
func (r *Registry) Resolve(kind string) (Binding, error) {
	b, ok := r.bindings[kind]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q", domain.ErrUnknownRecordKind, kind)
	}
	return b, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.bindings))
	for k := range r.bindings {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
