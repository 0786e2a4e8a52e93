package table

import "fmt"

// Sort is the single active sort column.
type Sort struct {
	ColumnID   string `json:"columnId"`
	Descending bool   `json:"descending,omitempty"`
}

// State is the paging and sort state owned by a widget.
type State struct {
	PageIndex int    `json:"pageIndex"`
	PageSize  int    `json:"pageSize"`
	Sort      *Sort  `json:"sort,omitempty"`
	Search    string `json:"search,omitempty"`
	// Cursor fetches the current page of a cursor paginated source. It is
	// empty on the first page.
	Cursor string `json:"cursor,omitempty"`
}

// Status is the fetch lifecycle of a widget.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// SortDirection reports "asc", "desc" or "" for column id.
func (s State) SortDirection(columnID string) string {
	if s.Sort == nil || s.Sort.ColumnID != columnID {
		return ""
	}
	if s.Sort.Descending {
		return "desc"
	}
	return "asc"
}

// NextSort returns the sort that clicking columnID's header produces:
// none -> ascending -> descending -> none. Another column replaces the
// current sort.
func (s State) NextSort(columnID string) *Sort {
	switch {
	case s.Sort == nil || s.Sort.ColumnID != columnID:
		return &Sort{ColumnID: columnID}
	case !s.Sort.Descending:
		return &Sort{ColumnID: columnID, Descending: true}
	default:
		return nil
	}
}

// Offset is the index of the first row on the current page.
func (s State) Offset() int {
	return s.PageIndex * s.PageSize
}

func (s State) clone() State {
	out := s
	if s.Sort != nil {
		sort := *s.Sort
		out.Sort = &sort
	}
	return out
}

func (s State) String() string {
	if s.Sort == nil {
		return fmt.Sprintf("page=%d size=%d", s.PageIndex, s.PageSize)
	}
	return fmt.Sprintf("page=%d size=%d sort=%s:%s", s.PageIndex, s.PageSize, s.Sort.ColumnID, s.SortDirection(s.Sort.ColumnID))
}
