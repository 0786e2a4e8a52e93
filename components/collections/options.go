package collections

import "net/http"

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath       string
	PageParam       string
	PageSizeParam   string
	SortParam       string
	OrderParam      string
	SearchParam     string
	CursorParam     string
	DefaultPageSize int
	MaxPageSize     int
	// Locale selects the collation used for sorting string columns.
	Locale string
	Guard  GuardFunc

	Collections map[string][]map[string]any
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/api/collections",
		PageParam:       "page",
		PageSizeParam:   "pageSize",
		SortParam:       "sort",
		OrderParam:      "order",
		SearchParam:     "q",
		CursorParam:     "cursor",
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaults.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaults.MaxPageSize
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaults.RoutePath
	}
	if opts.PageParam == "" {
		opts.PageParam = defaults.PageParam
	}
	if opts.PageSizeParam == "" {
		opts.PageSizeParam = defaults.PageSizeParam
	}
	if opts.SortParam == "" {
		opts.SortParam = defaults.SortParam
	}
	if opts.OrderParam == "" {
		opts.OrderParam = defaults.OrderParam
	}
	if opts.SearchParam == "" {
		opts.SearchParam = defaults.SearchParam
	}
	if opts.CursorParam == "" {
		opts.CursorParam = defaults.CursorParam
	}
	if opts.Collections != nil {
		opts.Collections = cloneCollections(opts.Collections)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithDefaultPageSize(size int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultPageSize = size
	}
}

func WithMaxPageSize(size int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxPageSize = size
	}
}

func WithLocale(locale string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Locale = locale
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithCollection registers rows under name, replacing an existing entry.
func WithCollection(name string, rows []map[string]any) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if o.Collections == nil {
			o.Collections = make(map[string][]map[string]any)
		}
		o.Collections[name] = append([]map[string]any{}, rows...)
	}
}

func clampPageSize(size int, opts Options) int {
	if size <= 0 {
		size = opts.DefaultPageSize
	}
	if opts.MaxPageSize > 0 && size > opts.MaxPageSize {
		return opts.MaxPageSize
	}
	return size
}

func cloneCollections(src map[string][]map[string]any) map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(src))
	for name, rows := range src {
		out[name] = append([]map[string]any{}, rows...)
	}
	return out
}
