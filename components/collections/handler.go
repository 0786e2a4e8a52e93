package collections

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/table"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type pageResponse struct {
	Data       []map[string]any `json:"data"`
	Total      int              `json:"total"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
// The collection name is the last segment of the request path. Without
// explicit collections the embedded demo data is served.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeError(w, err, http.StatusForbidden)
				return
			}
		}

		collections := opts.Collections
		if collections == nil {
			loaded, err := DemoCollections()
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			collections = loaded
		}

		name := path.Base(strings.TrimRight(r.URL.Path, "/"))
		rows, ok := collections[name]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		page, err := Query(rows, r, opts)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(pageResponse{Data: page.Rows, Total: page.Total, NextCursor: page.NextCursor})
	})
}

// Query pages rows according to the request parameters. Sorting and search
// apply to the whole collection before the page is cut. A cursor, when
// present, wins over page; nextCursor is set whenever rows remain.
func Query(rows []map[string]any, r *http.Request, opts Options) (table.Page, error) {
	values := r.URL.Query()

	size, err := optionalInt(values.Get(opts.PageSizeParam), opts.PageSizeParam)
	if err != nil {
		return table.Page{}, err
	}
	q := table.Query{
		PageSize: clampPageSize(size, opts),
		Search:   values.Get(opts.SearchParam),
	}

	switch cursor := strings.TrimSpace(values.Get(opts.CursorParam)); {
	case cursor != "":
		offset, err := decodeCursor(cursor)
		if err != nil {
			return table.Page{}, err
		}
		q.PageIndex = offset / q.PageSize
	default:
		page, err := optionalInt(values.Get(opts.PageParam), opts.PageParam)
		if err != nil {
			return table.Page{}, err
		}
		if page > 1 {
			q.PageIndex = page - 1
		}
	}

	if column := strings.TrimSpace(values.Get(opts.SortParam)); column != "" {
		order := strings.ToLower(strings.TrimSpace(values.Get(opts.OrderParam)))
		switch order {
		case "", "asc", "desc":
		default:
			return table.Page{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("collections: invalid %s %q", opts.OrderParam, order)}
		}
		q.Sort = &table.Sort{ColumnID: column, Descending: order == "desc"}
	}

	page := table.SlicePage(rows, q, opts.Locale)
	if next := (q.PageIndex + 1) * q.PageSize; next < page.Total {
		page.NextCursor = encodeCursor(next)
	}
	return page, nil
}

func optionalInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("collections: invalid %s %q", name, raw)}
	}
	return value, nil
}

// Cursors are opaque to clients; they carry the offset of the next page.
func encodeCursor(offset int) string {
	return "o" + strconv.Itoa(offset)
}

func decodeCursor(raw string) (int, error) {
	rest, ok := strings.CutPrefix(raw, "o")
	offset, err := strconv.Atoi(rest)
	if !ok || err != nil || offset < 0 {
		return 0, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("collections: invalid cursor %q", raw)}
	}
	return offset, nil
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	if w == nil {
		return
	}
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = fallback
		}
	}
	http.Error(w, http.StatusText(code), code)
}
