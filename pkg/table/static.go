package table

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StaticFetcher serves an in-memory collection. Rows are filtered by search,
// sorted with locale-aware collation and then sliced, so ordering always
// applies to the whole collection before paging.
type StaticFetcher struct {
	Rows   []map[string]any
	Locale string
}

// Fetch implements Fetcher.
func (s StaticFetcher) Fetch(ctx context.Context, q Query) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	return SlicePage(s.Rows, q, s.Locale), nil
}

// SlicePage filters, sorts and pages rows locally.
func SlicePage(rows []map[string]any, q Query, locale string) Page {
	filtered := FilterRows(rows, q.Search)
	SortRows(filtered, q.Sort, locale)

	total := len(filtered)
	if q.PageSize <= 0 {
		return Page{Rows: filtered, Total: total}
	}
	start := q.PageIndex * q.PageSize
	if start < 0 {
		start = 0
	}
	if start >= total {
		return Page{Rows: []map[string]any{}, Total: total}
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return Page{Rows: filtered[start:end], Total: total}
}

// FilterRows keeps rows where any value contains search, case-insensitively.
// The returned slice never aliases rows.
func FilterRows(rows []map[string]any, search string) []map[string]any {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if needle == "" || rowContains(row, needle) {
			out = append(out, row)
		}
	}
	return out
}

func rowContains(row map[string]any, needle string) bool {
	for _, value := range row {
		if value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(value)), needle) {
			return true
		}
	}
	return false
}

// SortRows stable-sorts rows in place by the sort column. Numbers compare
// numerically, everything else through a collator for locale. Missing values
// sort first in ascending order.
func SortRows(rows []map[string]any, by *Sort, locale string) {
	if by == nil || by.ColumnID == "" || len(rows) < 2 {
		return
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	collator := collate.New(tag, collate.IgnoreCase, collate.Numeric)

	sort.SliceStable(rows, func(i, j int) bool {
		cmp := compareValues(collator, rows[i][by.ColumnID], rows[j][by.ColumnID])
		if by.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareValues(collator *collate.Collator, a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if af, ok := number(a); ok {
		if bf, ok := number(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	return collator.CompareString(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
