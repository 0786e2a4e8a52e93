package screen

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/table"
)

func registerDefaults(r *Registry) {
	r.MustRegister("search", Descriptor{Render: renderSearch})
	r.MustRegister("filters", Descriptor{Render: renderFilters})
	r.MustRegister("table", Descriptor{Render: renderTable, Table: true})
	r.MustRegister("title", Descriptor{Render: renderTitle})
	r.MustRegister("container", Descriptor{Render: renderContainer})
}

var (
	titlePolicyOnce sync.Once
	titlePolicy     *bluemonday.Policy
)

func sanitizeTitle(raw string) string {
	titlePolicyOnce.Do(func() {
		titlePolicy = bluemonday.UGCPolicy()
	})
	return titlePolicy.Sanitize(raw)
}

// renderTitle writes a heading. The "html" prop is sanitized; "text" and
// "textKey" are escaped.
func renderTitle(_ context.Context, w io.Writer, node model.ComponentSchema, env *Env) error {
	level, _ := strconv.Atoi(node.Prop("level"))
	if level < 1 || level > 6 {
		level = 2
	}
	data := map[string]any{
		"id":    node.ID,
		"level": level,
		"text":  env.T(node.Prop("textKey"), node.Prop("text"), nil),
	}
	if raw := node.Prop("html"); raw != "" {
		data["html"] = sanitizeTitle(raw)
	}
	_, err := env.Templates().RenderTemplate("title", data, w)
	return err
}

func renderContainer(_ context.Context, _ io.Writer, _ model.ComponentSchema, _ *Env) error {
	return nil
}

func renderSearch(_ context.Context, w io.Writer, node model.ComponentSchema, env *Env) error {
	placeholder := env.T(node.Prop("placeholderKey"), node.Prop("placeholder"), nil)
	if placeholder == "" {
		placeholder = env.T("search.placeholder", "Search...", nil)
	}
	data := map[string]any{
		"id":          node.ID,
		"name":        table.ParamName(node.ID, table.ParamSearch),
		"value":       env.Search(node.ID),
		"placeholder": placeholder,
		"action":      env.BasePath(),
	}
	_, err := env.Templates().RenderTemplate("search", data, w)
	return err
}

type filterView struct {
	Name     string       `json:"name"`
	Label    string       `json:"label"`
	Selected string       `json:"selected"`
	Options  []optionView `json:"options"`
}

type optionView struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// renderFilters writes one select per entry of the "filters" prop. Entries
// are objects with key, label or labelKey, and options.
func renderFilters(_ context.Context, w io.Writer, node model.ComponentSchema, env *Env) error {
	raw, _ := node.Props["filters"].([]any)
	filters := make([]filterView, 0, len(raw))
	for _, entry := range raw {
		spec, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		key := strings.TrimSpace(propString(spec["key"]))
		if key == "" {
			continue
		}
		name := table.ParamName(node.ID, key)
		view := filterView{
			Name:     name,
			Label:    env.T(propString(spec["labelKey"]), propString(spec["label"]), nil),
			Selected: env.Query(name),
		}
		if view.Label == "" {
			view.Label = model.DefaultLabeler(key)
		}
		options, _ := spec["options"].([]any)
		for _, rawOption := range options {
			option := optionView{}
			switch typed := rawOption.(type) {
			case map[string]any:
				option.Value = propString(typed["value"])
				option.Label = env.T(propString(typed["labelKey"]), propString(typed["label"]), nil)
			default:
				option.Value = propString(typed)
			}
			if option.Label == "" {
				option.Label = option.Value
			}
			option.Selected = option.Value == view.Selected
			view.Options = append(view.Options, option)
		}
		filters = append(filters, view)
	}

	data := map[string]any{
		"id":      node.ID,
		"title":   env.T(node.Prop("titleKey"), node.Prop("title"), nil),
		"filters": filters,
		"action":  env.BasePath(),
	}
	if data["title"] == "" {
		data["title"] = env.T("filters.title", "Filters", nil)
	}
	_, err := env.Templates().RenderTemplate("filters", data, w)
	return err
}

type columnView struct {
	ID        string `json:"id"`
	Header    string `json:"header"`
	Sortable  bool   `json:"sortable"`
	Direction string `json:"direction"`
	AriaSort  string `json:"ariaSort"`
	Href      string `json:"href"`
}

// renderTable writes the widget snapshot: sortable header links, the rows or
// a loading/error/empty state, and Prev/Next links.
func renderTable(_ context.Context, w io.Writer, node model.ComponentSchema, env *Env) error {
	widget, ok := env.Widget(node.ID)
	if !ok {
		columns := table.ColumnsFromProps(node.Props)
		return renderTableView(w, node, env, table.Snapshot{
			ID:      node.ID,
			Status:  table.StatusLoaded,
			Total:   0,
			Columns: columns,
		}, false)
	}
	return renderTableView(w, node, env, widget.Snapshot(), true)
}

func renderTableView(w io.Writer, node model.ComponentSchema, env *Env, snap table.Snapshot, linked bool) error {
	columns := make([]columnView, 0, len(snap.Columns))
	for _, column := range snap.Columns {
		view := columnView{
			ID:        column.ID,
			Header:    env.T(column.HeaderKey, column.Header, nil),
			Sortable:  column.Sortable && linked,
			Direction: snap.State.SortDirection(column.ID),
		}
		switch view.Direction {
		case "asc":
			view.AriaSort = "ascending"
		case "desc":
			view.AriaSort = "descending"
		default:
			view.AriaSort = "none"
		}
		if view.Sortable {
			next := snap.State
			next.Sort = snap.State.NextSort(column.ID)
			next.PageIndex = 0
			view.Href = env.Link(node.ID, next)
		}
		columns = append(columns, view)
	}

	rows := make([][]string, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		cells := make([]string, len(snap.Columns))
		for i, column := range snap.Columns {
			cells[i] = cellText(row[column.ID])
		}
		rows = append(rows, cells)
	}

	data := map[string]any{
		"id":        node.ID,
		"caption":   env.T(node.Prop("titleKey"), node.Prop("title"), nil),
		"status":    string(snap.Status),
		"columns":   columns,
		"rows":      rows,
		"colspan":   max(len(columns), 1),
		"loading":   snap.Status == table.StatusLoading || snap.Status == table.StatusIdle,
		"failed":    snap.Status == table.StatusError,
		"empty":     snap.Status == table.StatusLoaded && len(rows) == 0,
		"hasPrev":   linked && snap.HasPrev,
		"hasNext":   linked && snap.HasNext,
		"loadText":  env.T("table.loading", "Loading...", nil),
		"errorText": env.T("table.error", "Could not load data", nil),
		"retryText": env.T("table.retry", "Retry", nil),
		"emptyText": env.T("table.empty", "No rows", nil),
		"prevText":  env.T("table.prev", "Prev", nil),
		"nextText":  env.T("table.next", "Next", nil),
		"pageText": env.T("table.page", fmt.Sprintf("Page %d", snap.State.PageIndex+1),
			map[string]any{"Page": snap.State.PageIndex + 1}),
	}
	if linked {
		data["retryHref"] = env.Link(node.ID, snap.State)
		prev := snap.State
		prev.PageIndex = max(prev.PageIndex-1, 0)
		prev.Cursor = snap.PrevCursor
		data["prevHref"] = env.Link(node.ID, prev)
		next := snap.State
		next.PageIndex++
		next.Cursor = snap.NextCursor
		data["nextHref"] = env.Link(node.ID, next)
	}

	_, err := env.Templates().RenderTemplate("table", data, w)
	return err
}

func cellText(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

func propString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
