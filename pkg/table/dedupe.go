package table

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Deduplicate collapses identical in-flight queries into one call to next.
// Each caller still honours its own context.
func Deduplicate(next Fetcher) Fetcher {
	return &dedupeFetcher{next: next}
}

type dedupeFetcher struct {
	next  Fetcher
	group singleflight.Group
}

func (d *dedupeFetcher) Fetch(ctx context.Context, q Query) (Page, error) {
	ch := d.group.DoChan(q.Key(), func() (any, error) {
		// detached so one caller's cancellation does not fail the others
		return d.next.Fetch(context.WithoutCancel(ctx), q)
	})

	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Page{}, res.Err
		}
		page := res.Val.(Page)
		rows := make([]map[string]any, len(page.Rows))
		copy(rows, page.Rows)
		page.Rows = rows
		return page, nil
	}
}
