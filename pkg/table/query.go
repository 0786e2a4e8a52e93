package table

import (
	"net/url"
	"strconv"
	"strings"
)

// URL parameter suffixes used to carry a widget's state across requests.
const (
	ParamPage   = "page"
	ParamSort   = "sort"
	ParamDesc   = "desc"
	ParamSearch = "q"
	ParamCursor = "cursor"
)

// ParamName returns the query parameter for widget id, e.g. "students.page".
func ParamName(id, suffix string) string {
	return id + "." + suffix
}

// StateFromQuery overlays the {id}.page, {id}.cursor, {id}.sort, {id}.desc
// and {id}.q parameters on base. Malformed or negative page values are
// ignored. A page parameter without a cursor clears the base cursor.
func StateFromQuery(id string, values url.Values, base State) State {
	state := base.clone()
	if raw := strings.TrimSpace(values.Get(ParamName(id, ParamPage))); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 0 {
			state.PageIndex = page
			state.Cursor = ""
		}
	}
	if cursor := strings.TrimSpace(values.Get(ParamName(id, ParamCursor))); cursor != "" {
		state.Cursor = cursor
	}
	if state.PageIndex == 0 {
		state.Cursor = ""
	}
	if column := strings.TrimSpace(values.Get(ParamName(id, ParamSort))); column != "" {
		desc, _ := strconv.ParseBool(values.Get(ParamName(id, ParamDesc)))
		state.Sort = &Sort{ColumnID: column, Descending: desc}
	}
	if values.Has(ParamName(id, ParamSearch)) {
		state.Search = values.Get(ParamName(id, ParamSearch))
	}
	return state
}

// EncodeQuery writes state into values under the widget's parameter names,
// removing parameters that hold default values.
func EncodeQuery(id string, state State, values url.Values) {
	values.Del(ParamName(id, ParamPage))
	values.Del(ParamName(id, ParamSort))
	values.Del(ParamName(id, ParamDesc))
	values.Del(ParamName(id, ParamSearch))
	values.Del(ParamName(id, ParamCursor))

	if state.PageIndex > 0 {
		values.Set(ParamName(id, ParamPage), strconv.Itoa(state.PageIndex))
		if state.Cursor != "" {
			values.Set(ParamName(id, ParamCursor), state.Cursor)
		}
	}
	if state.Sort != nil && state.Sort.ColumnID != "" {
		values.Set(ParamName(id, ParamSort), state.Sort.ColumnID)
		if state.Sort.Descending {
			values.Set(ParamName(id, ParamDesc), "1")
		}
	}
	if state.Search != "" {
		values.Set(ParamName(id, ParamSearch), state.Search)
	}
}
