package screen

import (
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/render/template"
	"github.com/goliatone/go-formscreen/pkg/table"
)

// Env gives component renderers access to the screen they render into.
type Env struct {
	screen *Screen
}

// Locale returns the render locale.
func (e *Env) Locale() string {
	return e.screen.locale
}

// T translates key, falling back to fallback when the key or message is
// missing.
func (e *Env) T(key, fallback string, data map[string]any) string {
	if key == "" {
		return fallback
	}
	return i18n.Lookup(e.screen.translator, e.screen.locale, key, fallback, data)
}

// Templates returns the screen's template engine.
func (e *Env) Templates() template.TemplateRenderer {
	return e.screen.templates
}

// Widget returns the table widget for a component id.
func (e *Env) Widget(id string) (*table.Widget, bool) {
	return e.screen.Widget(id)
}

// Search returns the local value of a search component.
func (e *Env) Search(id string) string {
	return e.screen.Search(id)
}

// Query returns the current value of a URL parameter.
func (e *Env) Query(name string) string {
	e.screen.mu.RLock()
	defer e.screen.mu.RUnlock()
	return e.screen.query.Get(name)
}

// Link returns a URL that renders the screen with table id in state.
func (e *Env) Link(id string, state table.State) string {
	return e.screen.link(id, state)
}

// BasePath returns the path forms and links submit to.
func (e *Env) BasePath() string {
	return e.screen.basePath
}
