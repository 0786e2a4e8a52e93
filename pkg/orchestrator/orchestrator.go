package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	theme "github.com/goliatone/go-theme"

	internalLoader "github.com/goliatone/go-formscreen/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formscreen/internal/openapi/parser"
	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/loader"
	"github.com/goliatone/go-formscreen/pkg/model"
	pkgopenapi "github.com/goliatone/go-formscreen/pkg/openapi"
	"github.com/goliatone/go-formscreen/pkg/render"
	"github.com/goliatone/go-formscreen/pkg/renderers/html"
	"github.com/goliatone/go-formscreen/pkg/screen"
	"github.com/goliatone/go-formscreen/pkg/table"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore supplies the definitions the orchestrator renders.
func WithStore(store *loader.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTranslator sets the translator handed to forms and screens.
func WithTranslator(t i18n.Translator) Option {
	return func(o *Orchestrator) {
		o.translator = t
	}
}

// WithDefaultLocale sets the locale used when a request omits one.
func WithDefaultLocale(locale string) Option {
	return func(o *Orchestrator) {
		if locale != "" {
			o.defaultLocale = locale
		}
	}
}

// WithFetcher sets the fetcher used by rest-backed tables.
func WithFetcher(fetcher table.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = fetcher
	}
}

// WithFetchTimeout bounds every table fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.fetchTimeout = d
	}
}

// WithLogger sets the logger passed to forms, screens and the OpenAPI builder.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSubmitErrorPolicy selects how forms treat failing submit handlers.
func WithSubmitErrorPolicy(policy form.SubmitErrorPolicy) Option {
	return func(o *Orchestrator) {
		o.submitPolicy = policy
	}
}

// WithScreenRegistry replaces the screen component registry.
func WithScreenRegistry(registry *screen.Registry) Option {
	return func(o *Orchestrator) {
		o.screenRegistry = registry
	}
}

// WithTableOptions appends options applied to every table widget.
func WithTableOptions(options ...table.Option) Option {
	return func(o *Orchestrator) {
		o.tableOptions = append(o.tableOptions, options...)
	}
}

// WithThemeSelector enables theme resolution for form renders.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeFallbacks provides template fallbacks applied when the selected
// theme omits a partial.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = fallbacks
	}
}

// WithDefinitionTransformer registers a Transformer that runs on a copy of
// every form definition before the engine is built.
func WithDefinitionTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithOpenAPI injects the loader and parser used by ImportOpenAPI.
func WithOpenAPI(loader pkgopenapi.Loader, parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.openapiLoader = loader
		o.openapiParser = parser
	}
}

// Orchestrator renders stored definitions. The zero configuration renders
// HTML with the embedded templates and English/Arabic catalogues.
type Orchestrator struct {
	store           *loader.Store
	registry        *render.Registry
	defaultRenderer string
	translator      i18n.Translator
	defaultLocale   string
	fetcher         table.Fetcher
	fetchTimeout    time.Duration
	logger          *slog.Logger
	submitPolicy    form.SubmitErrorPolicy
	screenRegistry  *screen.Registry
	tableOptions    []table.Option
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	transformer     Transformer
	overrides       map[string][]DataSourceOverride
	openapiLoader   pkgopenapi.Loader
	openapiParser   pkgopenapi.Parser
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		defaultLocale:   i18n.DefaultLocale,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// FormRequest selects a stored form and the per-request data to render it
// with.
type FormRequest struct {
	FormID string
	// Renderer names the renderer; empty uses the default.
	Renderer string
	Locale   string
	// Values prefill fields by path before Submission is applied.
	Values map[string]any
	// Submission is a posted form. When present its _action runs: add and
	// remove edit arrays, reset restores defaults and submit validates and
	// calls OnSubmit.
	Submission url.Values
	OnSubmit   form.SubmitFunc
	// ServerErrors are field or form errors returned by a backend, keyed the
	// way the backend reports them.
	ServerErrors map[string][]string
	ThemeName    string
	ThemeVariant string
	// RenderOptions carries hidden fields, method overrides and extra
	// form-level errors.
	RenderOptions render.RenderOptions
}

// FormResult is the outcome of RenderForm.
type FormResult struct {
	Body        []byte
	ContentType string
	Form        *form.Form
	Action      render.Action
	// Result holds the submitted values after a successful submit.
	Result map[string]any
	// SubmitErr reports a failed submit: ErrValidation or the handler error.
	SubmitErr error
}

// Submitted reports whether the request ended with a successful submit.
func (r FormResult) Submitted() bool {
	return r.Action.Kind == render.ActionSubmit && r.Result != nil && r.SubmitErr == nil
}

// RenderForm builds a form engine from the stored definition, applies the
// request and renders it.
func (o *Orchestrator) RenderForm(ctx context.Context, req FormRequest) (FormResult, error) {
	if err := o.ready(ctx); err != nil {
		return FormResult{}, err
	}
	if req.FormID == "" {
		return FormResult{}, errors.New("orchestrator: form id is required")
	}
	def, ok := o.store.Form(req.FormID)
	if !ok {
		return FormResult{}, fmt.Errorf("%w: %q", loader.ErrFormNotFound, req.FormID)
	}
	if err := o.applyTransformer(ctx, &def); err != nil {
		return FormResult{}, err
	}

	locale := o.localeFor(req.Locale)
	f, err := form.New(def, req.OnSubmit,
		form.WithLocale(locale),
		form.WithTranslator(o.translator),
		form.WithLogger(o.logger),
		form.WithSubmitErrorPolicy(o.submitPolicy),
	)
	if err != nil {
		return FormResult{}, fmt.Errorf("orchestrator: build form %q: %w", req.FormID, err)
	}

	result := FormResult{Form: f}
	for path, value := range req.Values {
		if err := f.SetFieldValue(path, value); err != nil {
			return FormResult{}, fmt.Errorf("orchestrator: prefill %q: %w", path, err)
		}
	}

	if req.Submission != nil {
		action, err := render.ApplySubmission(f, req.Submission)
		if err != nil {
			return FormResult{}, fmt.Errorf("orchestrator: apply submission: %w", err)
		}
		result.Action = action
		if action.Kind == render.ActionSubmit {
			result.Result, result.SubmitErr = f.Submit(ctx)
			if errors.Is(result.SubmitErr, form.ErrValidation) {
				result.Result = nil
			}
		}
	}
	if len(req.ServerErrors) > 0 {
		f.ApplyErrors(req.ServerErrors)
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return FormResult{}, err
	}

	options := req.RenderOptions
	if options.Locale == "" {
		options.Locale = locale
	}
	if options.Translator == nil {
		options.Translator = o.translator
	}
	if options.Theme == nil {
		cfg, err := o.themeConfig(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return FormResult{}, err
		}
		options.Theme = cfg
	}

	output, err := renderer.Render(ctx, f, options)
	if err != nil {
		return FormResult{}, fmt.Errorf("orchestrator: render output: %w", err)
	}
	result.Body = output
	result.ContentType = renderer.ContentType()
	return result, nil
}

// ScreenRequest selects a stored screen.
type ScreenRequest struct {
	ScreenID string
	Locale   string
	// Query restores table state ({id}.page, {id}.sort, {id}.desc) and search
	// values ({id}.q).
	Query url.Values
	// BasePath prefixes generated sort, paging and retry links.
	BasePath string
	// Components override component rendering by id.
	Components map[string]model.ComponentFunc
}

// RenderScreen builds a screen from the stored schema, restores table state
// from the query, loads every table and renders the result. Table failures
// render inline; only context cancellation is returned.
func (o *Orchestrator) RenderScreen(ctx context.Context, req ScreenRequest) ([]byte, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}
	if req.ScreenID == "" {
		return nil, errors.New("orchestrator: screen id is required")
	}
	schema, ok := o.store.Screen(req.ScreenID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", loader.ErrScreenNotFound, req.ScreenID)
	}
	schema.Components = o.applyDataSourceOverrides(req.ScreenID, schema.Components, req.Components)

	opts := []screen.Option{
		screen.WithLocale(o.localeFor(req.Locale)),
		screen.WithTranslator(o.translator),
		screen.WithLogger(o.logger),
		screen.WithFetchTimeout(o.fetchTimeout),
		screen.WithTableOptions(o.tableOptions...),
		screen.WithBasePath(req.BasePath),
	}
	if o.fetcher != nil {
		opts = append(opts, screen.WithFetcher(o.fetcher))
	}
	if o.screenRegistry != nil {
		opts = append(opts, screen.WithRegistry(o.screenRegistry))
	}

	s, err := screen.New(schema, opts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build screen %q: %w", req.ScreenID, err)
	}
	if req.Query != nil {
		s.Restore(req.Query)
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("orchestrator: render screen %q: %w", req.ScreenID, err)
	}
	return buf.Bytes(), nil
}

// ImportOpenAPI loads an OpenAPI document, builds a form definition from the
// request body of operationID and, when store is set, registers it.
func (o *Orchestrator) ImportOpenAPI(ctx context.Context, src pkgopenapi.Source, operationID string, options ...pkgopenapi.BuilderOption) (model.FormDefinition, error) {
	if err := o.ready(ctx); err != nil {
		return model.FormDefinition{}, err
	}
	if src == nil {
		return model.FormDefinition{}, errors.New("orchestrator: openapi source is required")
	}
	if operationID == "" {
		return model.FormDefinition{}, errors.New("orchestrator: operation id is required")
	}

	doc, err := o.openapiLoader.Load(ctx, src)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	operations, err := o.openapiParser.Operations(ctx, doc)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("orchestrator: parse operations: %w", err)
	}
	op, ok := operations[operationID]
	if !ok {
		return model.FormDefinition{}, fmt.Errorf("orchestrator: operation %q not found", operationID)
	}

	builder := pkgopenapi.NewBuilder(append([]pkgopenapi.BuilderOption{pkgopenapi.WithLogger(o.logger)}, options...)...)
	def, err := builder.Build(op)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("orchestrator: build form definition: %w", err)
	}
	if o.store != nil {
		if err := o.store.AddForm(def, src.Location()); err != nil {
			return model.FormDefinition{}, err
		}
	}
	return def, nil
}

// Store exposes the definitions the orchestrator renders.
func (o *Orchestrator) Store() *loader.Store {
	return o.store
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.initialiseErr
}

func (o *Orchestrator) localeFor(locale string) string {
	if locale != "" {
		return locale
	}
	return o.defaultLocale
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) themeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return render.ThemeConfig(selection, o.themeFallbacks), nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, def *model.FormDefinition) error {
	if o.transformer == nil || def == nil {
		return nil
	}
	*def = cloneDefinition(*def)
	if err := o.transformer.Transform(ctx, def); err != nil {
		return fmt.Errorf("orchestrator: transform definition: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.store == nil {
		o.store = loader.NewStore()
	}
	if o.translator == nil {
		translations, err := i18n.New(i18n.WithDefaultLocale(o.defaultLocale))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load translations: %w", err)
		} else {
			o.translator = translations
		}
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.openapiLoader == nil {
		o.openapiLoader = internalLoader.New(pkgopenapi.NewLoaderOptions())
	}
	if o.openapiParser == nil {
		o.openapiParser = internalParser.New(pkgopenapi.NewParserOptions())
	}
}
