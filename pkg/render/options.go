package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formscreen/pkg/i18n"
)

// RenderOptions carry per-request data that renderers use without changing
// the form definition.
type RenderOptions struct {
	// Locale selects translations and text direction. Empty falls back to the
	// form's locale.
	Locale string
	// Translator resolves *Key fields and built-in labels. Nil falls back to
	// the form's translator.
	Translator i18n.Translator
	// Action and Method override the definition's submit target.
	Action string
	Method string
	// Hidden inputs emitted with the form, e.g. a CSRF token.
	Hidden map[string]string
	// FormErrors are form-level messages shown above the fields in addition
	// to the form's own.
	FormErrors []string
	// Theme supplies template overrides, design tokens and asset URLs.
	Theme *theme.RendererConfig
}
