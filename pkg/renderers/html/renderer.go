package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/render"
	rendertemplate "github.com/goliatone/go-formscreen/pkg/render/template"
	"github.com/goliatone/go-formscreen/pkg/render/template/pongo"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *Registry
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry replaces the field type registry.
func WithRegistry(registry *Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// Renderer renders forms as HTML.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = NewDefaultRegistry()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(pongo.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{templates: templates, registry: cfg.registry}, nil
}

// Name implements render.Renderer.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, f *form.Form, options render.RenderOptions) ([]byte, error) {
	if f == nil {
		return nil, errors.New("html renderer: form is nil")
	}
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}

	options = render.Effective(f, options)
	def := render.LocalizeDefinition(f.Definition(), options.Locale, options.Translator)

	pass := &renderPass{
		ctx:       ctx,
		renderer:  r,
		form:      f,
		options:   options,
		submitted: f.Submitted() || len(f.Errors()) > 0,
	}
	if options.Theme != nil {
		pass.partials = options.Theme.Partials
	}

	fields, err := pass.renderFields(def.Fields, "")
	if err != nil {
		return nil, err
	}

	method := strings.ToLower(strings.TrimSpace(firstNonEmpty(options.Method, def.Method, "post")))
	hidden := options.Hidden
	if method != "get" && method != "post" {
		hidden = render.MergeHiddenFields(hidden, render.Hidden("_method", strings.ToUpper(method)))
		method = "post"
	}

	formErrors := form.MergeFormErrors(f.FormErrors(), options.FormErrors...)
	if f.SubmitError() != nil {
		formErrors = form.MergeFormErrors(formErrors, pass.t("form.submitFailed", "The form could not be submitted", nil))
	}

	data := map[string]any{
		"id":          def.ID,
		"title":       def.Title,
		"description": def.Description,
		"action":      firstNonEmpty(options.Action, def.Action),
		"method":      method,
		"lang":        options.Locale,
		"dir":         string(i18n.DirectionOf(options.Locale)),
		"hidden":      render.SortedHiddenFields(hidden),
		"errors":      formErrors,
		"fields":      fields,
		"submitText":  def.SubmitText,
		"resetText":   def.ResetText,
		"busy":        def.Loading || f.Submitting(),
		"action_name": render.ActionField,
	}
	if theme := options.Theme; theme != nil {
		data["style"] = render.CSSVarsStyle(theme.CSSVars)
		if theme.AssetURL != nil {
			data["stylesheet"] = theme.AssetURL("stylesheet")
		}
	}

	name := "form"
	if candidate := strings.TrimSpace(pass.partials["forms.form"]); candidate != "" {
		name = candidate
	}
	out, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

type renderPass struct {
	ctx       context.Context
	renderer  *Renderer
	form      *form.Form
	options   render.RenderOptions
	partials  map[string]string
	submitted bool
}

func (p *renderPass) t(key, fallback string, data map[string]any) string {
	return i18n.Lookup(p.options.Translator, p.options.Locale, key, fallback, data)
}

func (p *renderPass) renderFields(fields []model.FieldDefinition, prefix string) (string, error) {
	var out strings.Builder
	for _, def := range fields {
		if err := p.ctx.Err(); err != nil {
			return "", err
		}
		markup, err := p.renderField(def, prefix)
		if err != nil {
			return "", err
		}
		out.WriteString(markup)
	}
	return out.String(), nil
}

func (p *renderPass) renderField(def model.FieldDefinition, prefix string) (string, error) {
	path := prefix + def.Key
	field := Field{
		FieldDefinition: def,
		Path:            path,
		Prefix:          prefix,
		ID:              controlID(path),
	}

	descriptor, ok := p.renderer.registry.Descriptor(def.Type)
	if !ok {
		text := p.t("form.unknownField", "Unknown field type: "+string(def.Type), map[string]any{"Type": string(def.Type)})
		return unknownField(field, text), nil
	}

	switch def.Type {
	case model.FieldTypeGroup:
	case model.FieldTypeArray:
		field.Items = p.form.ItemCount(path)
		if p.submitted {
			field.Error = p.form.Error(path)
		}
	default:
		field.Value, _ = p.form.Value(path)
		if p.submitted {
			field.Error = p.form.Error(path)
		}
	}

	data := ComponentData{
		Template:      p.renderer.templates,
		ThemePartials: p.partials,
		RenderFields:  p.renderFields,
		T:             p.t,
	}
	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("html renderer: field %q: %w", path, err)
	}
	return wrapField(field, control.String(), descriptor.OwnsLabel), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
