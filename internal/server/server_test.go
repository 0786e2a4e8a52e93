package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formscreen "github.com/goliatone/go-formscreen"
	"github.com/goliatone/go-formscreen/components/collections"
	"github.com/goliatone/go-formscreen/internal/logging"
	"github.com/goliatone/go-formscreen/internal/server"
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/loader"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
	"github.com/goliatone/go-formscreen/pkg/table"
)

const definitions = `
forms:
  createQuiz:
    title: New quiz
    fields:
      - key: name
        type: text
        required: true
screens:
  students:
    title: Students
    components:
      - id: roster
        type: table
        props:
          columns: [id, name]
        dataSource:
          kind: rest
          url: https://api.test/students
          pagination:
            pageSize: 5
`

type submission struct {
	formID string
	values map[string]any
}

func newServer(t *testing.T, submitted *[]submission) server.Server {
	t.Helper()
	store, err := loader.LoadFS(fstest.MapFS{"defs.yaml": {Data: []byte(definitions)}})
	require.NoError(t, err)

	fetcher := table.FetcherFunc(func(_ context.Context, q table.Query) (table.Page, error) {
		rows := make([]map[string]any, 0, q.PageSize)
		for i := q.PageIndex * q.PageSize; i < (q.PageIndex+1)*q.PageSize && i < 12; i++ {
			rows = append(rows, map[string]any{"id": i, "name": fmt.Sprintf("student-%02d", i)})
		}
		return table.Page{Rows: rows, Total: 12}, nil
	})

	translator, err := i18n.New()
	require.NoError(t, err)

	orch := orchestrator.New(
		orchestrator.WithStore(store),
		orchestrator.WithTranslator(translator),
		orchestrator.WithFetcher(fetcher),
	)

	rows := []map[string]any{{"id": 1, "name": "Ali"}, {"id": 2, "name": "Adam"}}
	return server.NewServer(&server.Options{
		DisableReqLogs: true,
		Orchestrator:   orch,
		Locales:        translator,
		Collections:    collections.New(collections.WithCollection("students", rows)),
		Assets:         formscreen.AssetsFS(),
		Logger:         logging.Discard(),
		OnSubmit: func(_ context.Context, formID string, values map[string]any) error {
			*submitted = append(*submitted, submission{formID: formID, values: values})
			return nil
		},
	})
}

func serve(srv server.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsDefinitions(t *testing.T) {
	srv := newServer(t, new([]submission))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"createQuiz"}, body["forms"])
	assert.Equal(t, []string{"students"}, body["screens"])
	assert.Contains(t, body["renderers"], "html")
}

func TestRenderFormLocale(t *testing.T) {
	srv := newServer(t, new([]submission))

	req := httptest.NewRequest(http.MethodGet, "/forms/createQuiz", nil)
	req.Header.Set("Accept-Language", "ar-EG,ar;q=0.9,en;q=0.5")
	rec := serve(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `dir="rtl"`)
	assert.Contains(t, rec.Body.String(), `action="/forms/createQuiz"`)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/forms/createQuiz?lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `dir="rtl"`)
}

func TestSubmitForm(t *testing.T) {
	var submitted []submission
	srv := newServer(t, &submitted)

	post := func(values url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/forms/createQuiz", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return serve(srv, req)
	}

	rec := post(url.Values{"name": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `aria-invalid="true"`)
	assert.Empty(t, submitted)

	rec = post(url.Values{"name": {"Algebra"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, submitted, 1)
	assert.Equal(t, "createQuiz", submitted[0].formID)
	assert.Equal(t, "Algebra", submitted[0].values["name"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"name": "Algebra"}, body["values"])
}

func TestRenderScreen(t *testing.T) {
	srv := newServer(t, new([]submission))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/screens/students?roster.page=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>student-05</td>")
	assert.Contains(t, rec.Body.String(), `href="/screens/students?roster.page=2" rel="next"`)
}

func TestErrorsMapToStatus(t *testing.T) {
	srv := newServer(t, new([]submission))

	cases := []struct {
		path string
		code int
	}{
		{path: "/forms/missing", code: http.StatusNotFound},
		{path: "/screens/missing", code: http.StatusNotFound},
		{path: "/forms/createQuiz?renderer=pdf", code: http.StatusBadRequest},
		{path: "/nowhere", code: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := serve(srv, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCollectionsAndAssets(t *testing.T) {
	srv := newServer(t, new([]submission))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/collections/students?sort=name&pageSize=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data       []map[string]any `json:"data"`
		Total      int              `json:"total"`
		NextCursor string           `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Adam", page.Data[0]["name"])
	assert.Equal(t, 2, page.Total)
	assert.NotEmpty(t, page.NextCursor)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/assets/formscreen.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".fs-")
}
