package screen

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/render/template"
	"github.com/goliatone/go-formscreen/pkg/table"
)

// Option configures a Screen.
type Option func(*Screen)

// WithRegistry replaces the component registry.
func WithRegistry(registry *Registry) Option {
	return func(s *Screen) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithTemplates replaces the template engine used by built-in components.
func WithTemplates(templates template.TemplateRenderer) Option {
	return func(s *Screen) {
		if templates != nil {
			s.templates = templates
		}
	}
}

// WithTranslator sets the translator for keys and built-in labels.
func WithTranslator(t i18n.Translator) Option {
	return func(s *Screen) {
		s.translator = t
	}
}

// WithLocale sets the render locale.
func WithLocale(locale string) Option {
	return func(s *Screen) {
		if locale = strings.TrimSpace(locale); locale != "" {
			s.locale = locale
		}
	}
}

// WithLogger sets the logger handed to table widgets.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Screen) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFetcher sets the fetcher used by tables with a rest data source.
func WithFetcher(fetcher table.Fetcher) Option {
	return func(s *Screen) {
		s.fetcher = fetcher
	}
}

// WithFetchTimeout bounds every table fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Screen) {
		s.fetchTimeout = d
	}
}

// WithTableOptions appends options applied to every table widget.
func WithTableOptions(options ...table.Option) Option {
	return func(s *Screen) {
		s.tableOptions = append(s.tableOptions, options...)
	}
}

// WithBasePath sets the path used for generated sort, paging and retry links.
func WithBasePath(path string) Option {
	return func(s *Screen) {
		s.basePath = path
	}
}

// Screen is a rendered page built from a ScreenSchema.
type Screen struct {
	schema       model.ScreenSchema
	registry     *Registry
	templates    template.TemplateRenderer
	translator   i18n.Translator
	locale       string
	logger       *slog.Logger
	fetcher      table.Fetcher
	fetchTimeout time.Duration
	tableOptions []table.Option
	basePath     string

	widgets map[string]*table.Widget
	order   []string

	mu       sync.RWMutex
	query    url.Values
	searches map[string]string
}

// New validates schema and creates one table widget per table node that
// carries a data source.
func New(schema model.ScreenSchema, options ...Option) (*Screen, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	s := &Screen{
		schema:   schema,
		registry: NewDefaultRegistry(),
		locale:   i18n.DefaultLocale,
		logger:   slog.Default(),
		widgets:  make(map[string]*table.Widget),
		query:    url.Values{},
		searches: make(map[string]string),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.templates == nil {
		templates, err := defaultTemplates()
		if err != nil {
			return nil, fmt.Errorf("screen: load templates: %w", err)
		}
		s.templates = templates
	}
	if s.fetcher == nil {
		rest := table.NewRESTFetcher(nil)
		rest.Locale = s.locale
		s.fetcher = table.Deduplicate(rest)
	}

	s.walk(schema.Components, func(node model.ComponentSchema) {
		descriptor, ok := s.registry.Descriptor(node.Type)
		switch {
		case ok && descriptor.Table && node.DataSource != nil:
			s.addWidget(node)
		case normalize(node.Type) == "search":
			s.searches[node.ID] = node.Prop("value")
		}
	})
	return s, nil
}

func (s *Screen) addWidget(node model.ComponentSchema) {
	var fetcher table.Fetcher
	if node.DataSource.Kind == model.DataSourceREST {
		fetcher = s.fetcher
	}

	opts := []table.Option{
		table.WithLogger(s.logger),
		table.WithLocale(s.locale),
		table.WithTimeout(s.fetchTimeout),
	}
	if columns := table.ColumnsFromProps(node.Props); len(columns) > 0 {
		opts = append(opts, table.WithColumns(columns))
	}
	opts = append(opts, s.tableOptions...)

	s.widgets[node.ID] = table.NewWidget(node.ID, *node.DataSource, fetcher, opts...)
	s.order = append(s.order, node.ID)
}

func (s *Screen) walk(nodes []model.ComponentSchema, fn func(model.ComponentSchema)) {
	for _, node := range nodes {
		fn(node)
		s.walk(node.Children, fn)
	}
}

// Schema returns the screen definition.
func (s *Screen) Schema() model.ScreenSchema {
	return s.schema
}

// Locale returns the render locale.
func (s *Screen) Locale() string {
	return s.locale
}

// Widget returns the table widget for component id.
func (s *Screen) Widget(id string) (*table.Widget, bool) {
	w, ok := s.widgets[id]
	return w, ok
}

// TableIDs lists the ids of table widgets in document order.
func (s *Screen) TableIDs() []string {
	return append([]string(nil), s.order...)
}

// Search returns the local value of search component id.
func (s *Screen) Search(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searches[id]
}

// SetSearch updates the local value of search component id. Search inputs do
// not filter tables.
func (s *Screen) SetSearch(id, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[id] = value
}

// Restore applies URL query parameters: table widgets take their
// {id}.page, {id}.sort and {id}.desc values and search components their
// {id}.q value. The query is kept so generated links preserve unrelated
// parameters.
func (s *Screen) Restore(values url.Values) {
	s.mu.Lock()
	s.query = cloneValues(values)
	for id := range s.searches {
		if values.Has(table.ParamName(id, table.ParamSearch)) {
			s.searches[id] = values.Get(table.ParamName(id, table.ParamSearch))
		}
	}
	s.mu.Unlock()

	for _, id := range s.order {
		w := s.widgets[id]
		w.Restore(table.StateFromQuery(id, values, w.State()))
	}
}

// Load fetches every table concurrently. A failing table records the error
// in its own state and does not affect the others; Load only reports context
// cancellation.
func (s *Screen) Load(ctx context.Context) error {
	var g errgroup.Group
	for _, id := range s.order {
		w := s.widgets[id]
		g.Go(func() error {
			if err := w.Load(ctx); err != nil && !errors.Is(err, table.ErrSuperseded) {
				s.logger.DebugContext(ctx, "table load failed", "screen", s.schema.ID, "table", w.ID(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// Render writes the screen header and every component in order.
func (s *Screen) Render(ctx context.Context, w io.Writer) error {
	env := &Env{screen: s}

	var b strings.Builder
	dir := i18n.DirectionOf(s.locale)
	fmt.Fprintf(&b, `<div class="fs-screen" id="fs-screen-%s" lang="%s" dir="%s">`+"\n",
		html.EscapeString(s.schema.ID), html.EscapeString(s.locale), dir)

	title := env.T(s.schema.TitleKey, s.schema.Title, nil)
	subtitle := env.T(s.schema.SubtitleKey, s.schema.Subtitle, nil)
	if title != "" || subtitle != "" {
		b.WriteString(`<header class="fs-screen-header">` + "\n")
		if title != "" {
			b.WriteString("<h1>" + html.EscapeString(title) + "</h1>\n")
		}
		if subtitle != "" {
			b.WriteString("<p>" + html.EscapeString(subtitle) + "</p>\n")
		}
		b.WriteString("</header>\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	if err := s.renderNodes(ctx, w, s.schema.Components, env); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}

func (s *Screen) renderNodes(ctx context.Context, w io.Writer, nodes []model.ComponentSchema, env *Env) error {
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.renderNode(ctx, w, node, env); err != nil {
			return err
		}
	}
	return nil
}

func (s *Screen) renderNode(ctx context.Context, w io.Writer, node model.ComponentSchema, env *Env) error {
	if _, err := fmt.Fprintf(w, `<div class="fs-component" id="fs-%s" data-component-type="%s">`+"\n",
		html.EscapeString(node.ID), html.EscapeString(node.Type)); err != nil {
		return err
	}

	switch descriptor, ok := s.registry.Descriptor(node.Type); {
	case node.Component != nil:
		if err := node.Component(ctx, w, node); err != nil {
			return fmt.Errorf("screen: render component %q: %w", node.ID, err)
		}
	case ok:
		if err := descriptor.Render(ctx, w, node, env); err != nil {
			return fmt.Errorf("screen: render %s component %q: %w", descriptor.Name, node.ID, err)
		}
	default:
		if err := renderUnknown(w, node, env); err != nil {
			return err
		}
	}

	if err := s.renderNodes(ctx, w, node.Children, env); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}

func renderUnknown(w io.Writer, node model.ComponentSchema, env *Env) error {
	text := env.T("screen.unknownComponent", "Unknown component: "+node.Type, map[string]any{"Type": node.Type})
	_, err := fmt.Fprintf(w, `<div class="fs-unknown" role="note">%s</div>`+"\n", html.EscapeString(text))
	return err
}

// link builds a URL carrying the current state of every table with the
// target widget's state replaced by state.
func (s *Screen) link(id string, state table.State) string {
	s.mu.RLock()
	values := cloneValues(s.query)
	s.mu.RUnlock()

	for _, other := range s.order {
		if other == id {
			continue
		}
		table.EncodeQuery(other, s.widgets[other].State(), values)
	}
	table.EncodeQuery(id, state, values)

	encoded := values.Encode()
	if encoded == "" {
		if s.basePath == "" {
			return "?"
		}
		return s.basePath
	}
	return s.basePath + "?" + encoded
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, list := range values {
		out[key] = append([]string(nil), list...)
	}
	return out
}
