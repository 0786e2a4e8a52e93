package table

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// Query is one page request.
type Query struct {
	URL        string
	PageIndex  int
	PageSize   int
	Sort       *Sort
	Search     string
	Cursor     string
	Pagination model.PaginationType
	ServerSide bool
}

// Key identifies a query for de-duplication.
func (q Query) Key() string {
	var b strings.Builder
	b.WriteString(q.URL)
	b.WriteString("|")
	b.WriteString(strconv.Itoa(q.PageIndex))
	b.WriteString("|")
	b.WriteString(strconv.Itoa(q.PageSize))
	b.WriteString("|")
	if q.Sort != nil {
		b.WriteString(q.Sort.ColumnID)
		if q.Sort.Descending {
			b.WriteString(":desc")
		}
	}
	b.WriteString("|")
	b.WriteString(q.Search)
	b.WriteString("|")
	b.WriteString(q.Cursor)
	b.WriteString("|")
	b.WriteString(string(q.Pagination))
	fmt.Fprintf(&b, "|%t", q.ServerSide)
	return b.String()
}

// Page is a fetched slice of a collection. Total is -1 when unknown.
type Page struct {
	Rows       []map[string]any `json:"data"`
	Total      int              `json:"total"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// Fetcher loads one page of a collection.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (Page, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, q Query) (Page, error)

// Fetch implements Fetcher.
func (fn FetcherFunc) Fetch(ctx context.Context, q Query) (Page, error) {
	return fn(ctx, q)
}
