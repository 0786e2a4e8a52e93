package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// ErrUnexpectedStatus wraps non-2xx collection responses.
var ErrUnexpectedStatus = errors.New("table: unexpected response status")

// RESTFetcher reads collections over HTTP. Server-side queries send page,
// pageSize (or cursor), sort, order and q parameters and expect a
// {"data": [...], "total": n} body; client-side queries fetch the whole
// collection once per call and page it locally.
type RESTFetcher struct {
	Client *http.Client
	Locale string
	Header http.Header
}

// NewRESTFetcher returns a fetcher using client, or a client with a 15s
// timeout when nil.
func NewRESTFetcher(client *http.Client) *RESTFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RESTFetcher{Client: client}
}

// Fetch implements Fetcher.
func (f *RESTFetcher) Fetch(ctx context.Context, q Query) (Page, error) {
	if strings.TrimSpace(q.URL) == "" {
		return Page{}, errors.New("table: data source url is required")
	}

	target, err := url.Parse(q.URL)
	if err != nil {
		return Page{}, fmt.Errorf("table: parse url %q: %w", q.URL, err)
	}
	if q.ServerSide {
		target.RawQuery = serverParams(target.Query(), q).Encode()
	}

	page, err := f.get(ctx, target.String())
	if err != nil {
		return Page{}, err
	}
	if q.ServerSide {
		return page, nil
	}
	return SlicePage(page.Rows, q, f.Locale), nil
}

func serverParams(params url.Values, q Query) url.Values {
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	switch {
	case q.Pagination == model.PaginationCursor && q.Cursor != "":
		params.Set("cursor", q.Cursor)
	case q.Pagination == model.PaginationCursor && q.PageIndex == 0:
	default:
		// offset paging, or a cursor page reached without its cursor
		params.Set("page", strconv.Itoa(q.PageIndex+1))
	}
	if q.Sort != nil && q.Sort.ColumnID != "" {
		params.Set("sort", q.Sort.ColumnID)
		if q.Sort.Descending {
			params.Set("order", "desc")
		} else {
			params.Set("order", "asc")
		}
	}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	return params
}

func (f *RESTFetcher) get(ctx context.Context, target string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, fmt.Errorf("table: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range f.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("table: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Page{}, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("table: read body: %w", err)
	}
	return decodePage(body)
}

// decodePage accepts {"data": [...], "total": n} envelopes and bare arrays.
func decodePage(body []byte) (Page, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var rows []map[string]any
		if err := json.Unmarshal(body, &rows); err != nil {
			return Page{}, fmt.Errorf("table: decode rows: %w", err)
		}
		return Page{Rows: rows, Total: len(rows)}, nil
	}

	page := Page{Total: -1}
	if err := json.Unmarshal(body, &page); err != nil {
		return Page{}, fmt.Errorf("table: decode page: %w", err)
	}
	if page.Rows == nil {
		page.Rows = []map[string]any{}
	}
	return page, nil
}
