package screen

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// RenderFunc writes the markup for one component node. Children are rendered
// by the screen after the node's own markup.
type RenderFunc func(ctx context.Context, w io.Writer, node model.ComponentSchema, env *Env) error

// Descriptor binds a component type to its renderer.
type Descriptor struct {
	Name   string
	Render RenderFunc
	// Table marks types whose nodes get a table.Widget when they carry a
	// data source.
	Table bool
}

// Registry maps component types to descriptors.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// NewDefaultRegistry returns a registry with the built-in search, filters,
// table, title and container renderers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerDefaults(r)
	return r
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := NewRegistry()
	for name, descriptor := range r.components {
		cloned.components[name] = descriptor
	}
	return cloned
}

// Register associates a descriptor with a component type, replacing any
// existing entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("screen: component type is required")
	}
	if descriptor.Render == nil {
		return fmt.Errorf("screen: renderer for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.components[name] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by type.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	return descriptor, ok
}

// Names returns the registered types sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
