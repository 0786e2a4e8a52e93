package html

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-formscreen/pkg/model"
	rendertemplate "github.com/goliatone/go-formscreen/pkg/render/template"
)

// ControlRenderer writes the control markup for one field. The renderer wraps
// it with the label, description and inline error; descriptors that set
// OwnsLabel render their own label or legend.
type ControlRenderer func(buf *bytes.Buffer, field Field, data ComponentData) error

// ComponentData carries helpers for control renderers.
type ComponentData struct {
	Template      rendertemplate.TemplateRenderer
	ThemePartials map[string]string
	// RenderFields renders child definitions under prefix, e.g.
	// "questions.0.".
	RenderFields func(fields []model.FieldDefinition, prefix string) (string, error)
	// T translates a key with a literal fallback.
	T func(key, fallback string, data map[string]any) string
}

// Descriptor binds a control renderer to a field type.
type Descriptor struct {
	Type      model.FieldType
	Renderer  ControlRenderer
	OwnsLabel bool
}

// Registry maps field types to descriptors.
type Registry struct {
	mu       sync.RWMutex
	controls map[model.FieldType]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{controls: make(map[model.FieldType]Descriptor)}
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := NewRegistry()
	for key, descriptor := range r.controls {
		cloned.controls[key] = descriptor
	}
	return cloned
}

// Register associates a descriptor with a field type, replacing any existing
// entry.
func (r *Registry) Register(fieldType model.FieldType, descriptor Descriptor) error {
	if fieldType == "" {
		return fmt.Errorf("html: field type is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("html: renderer for %q is nil", fieldType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Type = fieldType
	r.controls[fieldType] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(fieldType model.FieldType, descriptor Descriptor) {
	if err := r.Register(fieldType, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches the descriptor for a field type.
func (r *Registry) Descriptor(fieldType model.FieldType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.controls[fieldType]
	return descriptor, ok
}

// Types returns the registered field types sorted.
func (r *Registry) Types() []model.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]model.FieldType, 0, len(r.controls))
	for fieldType := range r.controls {
		types = append(types, fieldType)
	}
	slices.Sort(types)
	return types
}
