package screen_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/screen"
	"github.com/goliatone/go-formscreen/pkg/table"
)

func studentRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"id": i, "name": fmt.Sprintf("student-%02d", i)}
	}
	return rows
}

func studentsScreen() model.ScreenSchema {
	return model.ScreenSchema{
		ID:    "students",
		Title: "Students",
		Components: []model.ComponentSchema{
			{ID: "heading", Type: "title", Props: map[string]any{"text": "Class 3"}},
			{
				ID:   "roster",
				Type: "table",
				Props: map[string]any{
					"columns": []any{"id", "name"},
				},
				DataSource: &model.DataSource{Kind: model.DataSourceStatic, Rows: studentRows(25)},
			},
			{ID: "progress", Type: "chart"},
		},
	}
}

func render(t *testing.T, s *screen.Screen) string {
	t.Helper()
	var b strings.Builder
	if err := s.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestScreen_RendersComponentsInOrderWithUnknownPlaceholder(t *testing.T) {
	s, err := screen.New(studentsScreen())
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	out := render(t, s)

	heading := strings.Index(out, "Class 3")
	roster := strings.Index(out, `data-table-id="roster"`)
	chart := strings.Index(out, "Unknown component: chart")
	if heading < 0 || roster < 0 || chart < 0 {
		t.Fatalf("missing component output:\n%s", out)
	}
	if !(heading < roster && roster < chart) {
		t.Fatalf("components rendered out of order: %d %d %d", heading, roster, chart)
	}
	if !strings.Contains(out, "<h1>Students</h1>") {
		t.Fatalf("expected screen header:\n%s", out)
	}
}

func TestScreen_TablePagingAndSortLinks(t *testing.T) {
	s, err := screen.New(studentsScreen())
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	_ = s.Load(context.Background())

	out := render(t, s)
	if !strings.Contains(out, "<td>student-09</td>") || strings.Contains(out, "<td>student-10</td>") {
		t.Fatalf("first page should hold rows 0-9:\n%s", out)
	}
	if !strings.Contains(out, `href="?roster.sort=name"`) {
		t.Fatalf("expected ascending sort link for name:\n%s", out)
	}
	if !strings.Contains(out, `href="?roster.page=1" rel="next"`) {
		t.Fatalf("expected next link:\n%s", out)
	}
	if !strings.Contains(out, `<span aria-disabled="true">Prev</span>`) {
		t.Fatalf("prev should be disabled on the first page:\n%s", out)
	}

	s.Restore(url.Values{"roster.page": {"1"}, "roster.sort": {"id"}, "roster.desc": {"1"}})
	_ = s.Load(context.Background())
	out = render(t, s)

	if !strings.Contains(out, "<td>student-14</td>") || strings.Contains(out, "<td>student-24</td>") {
		t.Fatalf("descending page 1 should hold rows 14 down to 5:\n%s", out)
	}
	if !strings.Contains(out, `aria-sort="descending"`) {
		t.Fatalf("expected descending marker:\n%s", out)
	}
	// third click on the active column clears the sort
	if !strings.Contains(out, `<a href="?" data-sort="desc">Id</a>`) {
		t.Fatalf("expected sort clearing link:\n%s", out)
	}
}

func TestScreen_CursorTableRestoredFromQuery(t *testing.T) {
	schema := model.ScreenSchema{
		ID: "students",
		Components: []model.ComponentSchema{{
			ID:   "roster",
			Type: "table",
			DataSource: &model.DataSource{
				Kind:       model.DataSourceREST,
				URL:        "http://example.test/students",
				ServerSide: true,
				Pagination: model.Pagination{Type: model.PaginationCursor, PageSize: 2},
			},
		}},
	}
	var seen []table.Query
	fetcher := table.FetcherFunc(func(ctx context.Context, q table.Query) (table.Page, error) {
		seen = append(seen, q)
		return table.Page{Rows: studentRows(2), Total: -1, NextCursor: fmt.Sprintf("c%d", q.PageIndex+1)}, nil
	})

	s, err := screen.New(schema, screen.WithFetcher(fetcher), screen.WithBasePath("/screens/students"))
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	s.Restore(url.Values{"roster.page": {"2"}, "roster.cursor": {"c2"}})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seen) != 1 || seen[0].PageIndex != 2 || seen[0].Cursor != "c2" {
		t.Fatalf("restored table fetched with %+v", seen)
	}

	out := render(t, s)
	for _, want := range []string{"roster.cursor=c3", "roster.page=3", `href="/screens/students?roster.page=1" rel="prev"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestScreen_TablesFailIndependently(t *testing.T) {
	schema := model.ScreenSchema{
		ID: "dashboard",
		Components: []model.ComponentSchema{
			{ID: "broken", Type: "table", DataSource: &model.DataSource{Kind: model.DataSourceREST, URL: "http://example.test/rows"}},
			{ID: "local", Type: "table", DataSource: &model.DataSource{Kind: model.DataSourceStatic, Rows: studentRows(2)}},
		},
	}
	fetcher := table.FetcherFunc(func(ctx context.Context, q table.Query) (table.Page, error) {
		return table.Page{}, errors.New("connection refused")
	})

	s, err := screen.New(schema, screen.WithFetcher(fetcher), screen.WithBasePath("/screens/dashboard"))
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load must not surface table failures: %v", err)
	}

	broken, _ := s.Widget("broken")
	local, _ := s.Widget("local")
	if broken.Status() != table.StatusError || local.Status() != table.StatusLoaded {
		t.Fatalf("unexpected statuses %s / %s", broken.Status(), local.Status())
	}

	out := render(t, s)
	if !strings.Contains(out, `role="alert">Could not load data <a href="/screens/dashboard" class="fs-table-retry">Retry</a>`) {
		t.Fatalf("expected inline error with retry link:\n%s", out)
	}
	if !strings.Contains(out, "<td>student-01</td>") {
		t.Fatalf("healthy table should still render rows:\n%s", out)
	}
}

func TestScreen_ComponentOverrideWins(t *testing.T) {
	schema := model.ScreenSchema{
		ID: "custom",
		Components: []model.ComponentSchema{
			{
				ID:   "summary",
				Type: "title",
				Component: func(ctx context.Context, w io.Writer, node model.ComponentSchema) error {
					_, err := io.WriteString(w, "<p>custom "+node.ID+"</p>")
					return err
				},
				Children: []model.ComponentSchema{
					{ID: "nested", Type: "title", Props: map[string]any{"text": "inside"}},
				},
			},
		},
	}
	s, err := screen.New(schema)
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}

	out := render(t, s)
	if !strings.Contains(out, "<p>custom summary</p>") {
		t.Fatalf("override not used:\n%s", out)
	}
	if strings.Contains(out, `id="fs-title-summary"`) {
		t.Fatalf("registry renderer ran despite override:\n%s", out)
	}
	parent := strings.Index(out, `id="fs-summary"`)
	child := strings.Index(out, "inside")
	closing := strings.LastIndex(out, "</div>\n</div>\n</div>")
	if parent < 0 || child < parent || closing < child {
		t.Fatalf("child should render inside its parent:\n%s", out)
	}
}

func TestScreen_TitleHTMLIsSanitized(t *testing.T) {
	schema := model.ScreenSchema{
		ID: "s",
		Components: []model.ComponentSchema{
			{ID: "t", Type: "title", Props: map[string]any{"html": `<b>Quiz</b><script>alert(1)</script>`, "level": 3}},
		},
	}
	s, err := screen.New(schema)
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	out := render(t, s)
	if !strings.Contains(out, `<h3 class="fs-title" id="fs-title-t"><b>Quiz</b></h3>`) {
		t.Fatalf("unexpected title markup:\n%s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script survived sanitizing:\n%s", out)
	}
}

func TestScreen_ArabicLocale(t *testing.T) {
	s, err := screen.New(studentsScreen(), screen.WithLocale("ar"), screen.WithTranslator(i18n.MustNew()))
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	_ = s.Load(context.Background())

	out := render(t, s)
	for _, want := range []string{`dir="rtl"`, "مكون غير معروف: chart", "التالي"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestScreen_SearchIsLocalState(t *testing.T) {
	schema := model.ScreenSchema{
		ID: "s",
		Components: []model.ComponentSchema{
			{ID: "find", Type: "search", Props: map[string]any{"placeholder": "Find a student"}},
			{ID: "roster", Type: "table", DataSource: &model.DataSource{Kind: model.DataSourceStatic, Rows: studentRows(3)}},
		},
	}
	s, err := screen.New(schema)
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	s.Restore(url.Values{"find.q": {"student-02"}})
	_ = s.Load(context.Background())

	if got := s.Search("find"); got != "student-02" {
		t.Fatalf("search value = %q", got)
	}
	out := render(t, s)
	if !strings.Contains(out, `name="find.q" value="student-02" placeholder="Find a student"`) {
		t.Fatalf("unexpected search markup:\n%s", out)
	}
	if !strings.Contains(out, "<td>student-00</td>") {
		t.Fatalf("search must not filter tables:\n%s", out)
	}
}

func TestScreen_FiltersRenderSelectedOption(t *testing.T) {
	schema := model.ScreenSchema{
		ID: "s",
		Components: []model.ComponentSchema{
			{ID: "f", Type: "filters", Props: map[string]any{"filters": []any{
				map[string]any{"key": "grade", "options": []any{"A", map[string]any{"label": "Grade B", "value": "B"}}},
			}}},
		},
	}
	s, err := screen.New(schema)
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	s.Restore(url.Values{"f.grade": {"B"}})

	out := render(t, s)
	for _, want := range []string{`<legend>Filters</legend>`, `<label>Grade`, `name="f.grade"`, `<option value="B" selected>Grade B</option>`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	schema := model.ScreenSchema{
		ID: "s",
		Components: []model.ComponentSchema{
			{ID: "a", Type: "title", Children: []model.ComponentSchema{{ID: "a", Type: "title"}}},
		},
	}
	if _, err := screen.New(schema); err == nil {
		t.Fatal("expected duplicate id error")
	}
}
