package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-formscreen/pkg/model"
)

var (
	// ErrSuperseded is returned to a caller whose fetch was replaced by a newer
	// state change. Its response, if any, was discarded.
	ErrSuperseded = errors.New("table: request superseded")
	// ErrFetchTimeout reports a fetch that exceeded the widget timeout.
	ErrFetchTimeout = errors.New("table: fetch timed out")
	// ErrNoFetcher is returned by widgets without a data source fetcher.
	ErrNoFetcher = errors.New("table: fetcher is required")
)

// Column describes one rendered column.
type Column struct {
	ID        string `json:"id" yaml:"id"`
	Header    string `json:"header,omitempty" yaml:"header,omitempty"`
	HeaderKey string `json:"headerKey,omitempty" yaml:"headerKey,omitempty"`
	Sortable  bool   `json:"sortable,omitempty" yaml:"sortable,omitempty"`
}

// Option configures a Widget.
type Option func(*Widget)

// WithColumns sets the visible columns.
func WithColumns(columns []Column) Option {
	return func(w *Widget) {
		w.columns = append([]Column(nil), columns...)
	}
}

// WithLogger sets the widget logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithTimeout bounds each fetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(w *Widget) {
		w.timeout = d
	}
}

// WithClampToTotal stops NextPage at the last page once the total is known.
// Without it NextPage always advances and relies on the source returning an
// empty page.
func WithClampToTotal(enabled bool) Option {
	return func(w *Widget) {
		w.clampToTotal = enabled
	}
}

// WithLocale sets the collation locale used for client-side sorting.
func WithLocale(locale string) Option {
	return func(w *Widget) {
		w.locale = locale
	}
}

// Snapshot is a consistent view of a widget for rendering.
type Snapshot struct {
	ID      string
	State   State
	Status  Status
	Rows    []map[string]any
	Total   int
	Err     error
	Columns []Column
	HasPrev bool
	HasNext bool
	// PrevCursor and NextCursor fetch the neighbouring pages of a cursor
	// paginated source when known.
	PrevCursor string
	NextCursor string
}

// PageCount returns the number of pages when the total is known, else -1.
func (s Snapshot) PageCount() int {
	if s.Total < 0 || s.State.PageSize <= 0 {
		return -1
	}
	return (s.Total + s.State.PageSize - 1) / s.State.PageSize
}

// Widget is a table bound to one data source.
type Widget struct {
	id           string
	source       model.DataSource
	fetcher      Fetcher
	columns      []Column
	logger       *slog.Logger
	timeout      time.Duration
	clampToTotal bool
	locale       string

	mu         sync.Mutex
	state      State
	status     Status
	rows       []map[string]any
	total      int
	nextCursor string
	cursors    map[int]string
	err        error
	token      uint64
	cancel     context.CancelFunc
}

// NewWidget creates an idle widget. The page size comes from the data source
// (default 10).
func NewWidget(id string, source model.DataSource, fetcher Fetcher, options ...Option) *Widget {
	w := &Widget{
		id:      id,
		source:  source,
		fetcher: fetcher,
		logger:  slog.Default(),
		status:  StatusIdle,
		total:   -1,
		cursors: map[int]string{0: ""},
	}
	w.state = State{PageSize: source.PageSize()}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	if fetcher == nil && source.Kind == model.DataSourceStatic {
		w.fetcher = StaticFetcher{Rows: source.Rows, Locale: w.locale}
	}
	if len(w.columns) == 0 {
		w.columns = inferColumns(source.Rows)
	}
	return w
}

// ID returns the component id the widget belongs to.
func (w *Widget) ID() string {
	return w.id
}

// State returns a copy of the paging and sort state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Widget) stateLocked() State {
	state := w.state.clone()
	state.Cursor = w.cursors[state.PageIndex]
	return state
}

// Status reports the fetch lifecycle state.
func (w *Widget) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Snapshot returns the current state, rows and status together.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows := make([]map[string]any, len(w.rows))
	copy(rows, w.rows)
	return Snapshot{
		ID:         w.id,
		State:      w.stateLocked(),
		Status:     w.status,
		Rows:       rows,
		Total:      w.total,
		Err:        w.err,
		Columns:    append([]Column(nil), w.columns...),
		HasPrev:    w.state.PageIndex > 0,
		HasNext:    w.hasNextLocked(),
		PrevCursor: w.cursors[w.state.PageIndex-1],
		NextCursor: w.cursors[w.state.PageIndex+1],
	}
}

func (w *Widget) hasNextLocked() bool {
	switch {
	case w.status != StatusLoaded:
		return false
	case w.total >= 0:
		return (w.state.PageIndex+1)*w.state.PageSize < w.total
	case w.source.Pagination.Type == model.PaginationCursor:
		return w.nextCursor != ""
	default:
		return len(w.rows) >= w.state.PageSize
	}
}

// Restore replaces the state without fetching. Page indices below zero are
// clamped and a non-positive page size keeps the current one. A cursor in
// state is remembered for the restored page.
func (w *Widget) Restore(state State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := state.clone()
	if next.PageIndex < 0 {
		next.PageIndex = 0
	}
	if next.PageSize <= 0 {
		next.PageSize = w.state.PageSize
	}
	if next.Sort != nil && next.Sort.ColumnID == "" {
		next.Sort = nil
	}
	if next.PageSize != w.state.PageSize || !sameSort(next.Sort, w.state.Sort) || next.Search != w.state.Search {
		w.cursors = map[int]string{0: ""}
	}
	if next.Cursor != "" && next.PageIndex > 0 {
		w.cursors[next.PageIndex] = next.Cursor
	}
	next.Cursor = ""
	w.state = next
}

// Load fetches the page for the current state.
func (w *Widget) Load(ctx context.Context) error {
	return w.fetch(ctx)
}

// Retry re-issues the current query, typically after StatusError.
func (w *Widget) Retry(ctx context.Context) error {
	return w.fetch(ctx)
}

// ToggleSort advances columnID through none, ascending and descending. Any
// other active column is replaced. The page index resets to 0.
func (w *Widget) ToggleSort(ctx context.Context, columnID string) error {
	w.mu.Lock()
	w.state.Sort = w.state.NextSort(columnID)
	w.state.PageIndex = 0
	w.cursors = map[int]string{0: ""}
	w.mu.Unlock()
	return w.fetch(ctx)
}

// NextPage advances one page. With WithClampToTotal it is a no-op on the
// last known page.
func (w *Widget) NextPage(ctx context.Context) error {
	w.mu.Lock()
	if w.clampToTotal && w.status == StatusLoaded && w.total >= 0 &&
		(w.state.PageIndex+1)*w.state.PageSize >= w.total {
		w.mu.Unlock()
		return nil
	}
	w.state.PageIndex++
	w.mu.Unlock()
	return w.fetch(ctx)
}

// PrevPage moves back one page. On the first page it does nothing.
func (w *Widget) PrevPage(ctx context.Context) error {
	w.mu.Lock()
	if w.state.PageIndex == 0 {
		w.mu.Unlock()
		return nil
	}
	w.state.PageIndex--
	w.mu.Unlock()
	return w.fetch(ctx)
}

// SetPage jumps to index, clamped at 0.
func (w *Widget) SetPage(ctx context.Context, index int) error {
	if index < 0 {
		index = 0
	}
	w.mu.Lock()
	w.state.PageIndex = index
	w.mu.Unlock()
	return w.fetch(ctx)
}

// SetSearch filters the collection and resets to the first page.
func (w *Widget) SetSearch(ctx context.Context, search string) error {
	w.mu.Lock()
	w.state.Search = search
	w.state.PageIndex = 0
	w.cursors = map[int]string{0: ""}
	w.mu.Unlock()
	return w.fetch(ctx)
}

func (w *Widget) fetch(ctx context.Context) error {
	w.mu.Lock()
	if w.fetcher == nil {
		w.status = StatusError
		w.err = ErrNoFetcher
		w.mu.Unlock()
		return ErrNoFetcher
	}

	w.token++
	token := w.token
	if w.cancel != nil {
		w.cancel()
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	if w.timeout > 0 {
		var timeoutCancel context.CancelFunc
		fetchCtx, timeoutCancel = context.WithTimeout(fetchCtx, w.timeout)
		parent := cancel
		cancel = func() {
			timeoutCancel()
			parent()
		}
	}
	w.cancel = cancel
	w.status = StatusLoading
	w.err = nil
	query := w.queryLocked()
	fetcher := w.fetcher
	w.mu.Unlock()

	page, err := fetcher.Fetch(fetchCtx, query)
	timedOut := errors.Is(fetchCtx.Err(), context.DeadlineExceeded)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()

	if token != w.token {
		w.logger.DebugContext(ctx, "discarding stale table response",
			"table", w.id,
			"token", token,
			"current", w.token,
		)
		return ErrSuperseded
	}
	w.cancel = nil

	if err != nil {
		if timedOut {
			err = fmt.Errorf("%w after %s: %w", ErrFetchTimeout, w.timeout, err)
		}
		w.status = StatusError
		w.err = err
		w.logger.WarnContext(ctx, "table fetch failed", "table", w.id, "state", w.state.String(), "error", err)
		return err
	}

	w.status = StatusLoaded
	w.rows = page.Rows
	w.total = page.Total
	w.nextCursor = page.NextCursor
	if page.NextCursor != "" {
		w.cursors[w.state.PageIndex+1] = page.NextCursor
	}
	return nil
}

func (w *Widget) queryLocked() Query {
	state := w.state.clone()
	return Query{
		URL:        w.source.URL,
		PageIndex:  state.PageIndex,
		PageSize:   state.PageSize,
		Sort:       state.Sort,
		Search:     state.Search,
		Cursor:     w.cursors[state.PageIndex],
		Pagination: w.source.Pagination.Type,
		ServerSide: w.source.ServerSide,
	}
}

func sameSort(a, b *Sort) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func inferColumns(rows []map[string]any) []Column {
	if len(rows) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	columns := make([]Column, 0, len(keys))
	for _, key := range keys {
		columns = append(columns, Column{ID: key, Header: model.DefaultLabeler(key), Sortable: true})
	}
	return columns
}
