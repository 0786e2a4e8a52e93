package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/loader"
	"github.com/goliatone/go-formscreen/pkg/model"
	pkgopenapi "github.com/goliatone/go-formscreen/pkg/openapi"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
	"github.com/goliatone/go-formscreen/pkg/render"
	"github.com/goliatone/go-formscreen/pkg/table"
)

const definitions = `
forms:
  createQuiz:
    title: New quiz
    action: /quizzes
    method: post
    fields:
      - key: name
        type: text
        required: true
      - key: desc
        type: textarea
      - key: questions
        type: array
        itemLabel: Question
        fields:
          - key: prompt
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
      - id: progress
        type: chart
`

func newStore(t *testing.T) *loader.Store {
	t.Helper()
	store, err := loader.LoadFS(fstest.MapFS{"defs.yaml": {Data: []byte(definitions)}})
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	return store
}

func studentFetcher(calls *[]table.Query) table.Fetcher {
	return table.FetcherFunc(func(_ context.Context, q table.Query) (table.Page, error) {
		*calls = append(*calls, q)
		rows := make([]map[string]any, 0, q.PageSize)
		for i := q.PageIndex * q.PageSize; i < (q.PageIndex+1)*q.PageSize && i < 12; i++ {
			rows = append(rows, map[string]any{"id": i, "name": fmt.Sprintf("student-%02d", i)})
		}
		return table.Page{Rows: rows, Total: 12}, nil
	})
}

func TestRenderFormDefaultsToHTML(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(newStore(t)))

	result, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{FormID: "createQuiz"})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	if result.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", result.ContentType)
	}
	out := string(result.Body)
	for _, want := range []string{`id="fs-form-createQuiz"`, `name="name"`, `name="desc"`, "New quiz"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if result.Submitted() {
		t.Fatalf("plain render must not count as submitted")
	}
}

func TestRenderFormSubmission(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(newStore(t)))

	var received map[string]any
	onSubmit := func(_ context.Context, values map[string]any) error {
		received = values
		return nil
	}

	t.Run("invalid submit renders errors", func(t *testing.T) {
		received = nil
		result, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{
			FormID:     "createQuiz",
			Submission: url.Values{"name": {""}, "desc": {"x"}},
			OnSubmit:   onSubmit,
		})
		if err != nil {
			t.Fatalf("render form: %v", err)
		}
		if !errors.Is(result.SubmitErr, form.ErrValidation) {
			t.Fatalf("expected validation error, got %v", result.SubmitErr)
		}
		if received != nil {
			t.Fatalf("handler must not run on invalid submit")
		}
		if !strings.Contains(string(result.Body), `aria-invalid="true"`) {
			t.Fatalf("expected field error markup:\n%s", result.Body)
		}
	})

	t.Run("add item keeps editing", func(t *testing.T) {
		result, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{
			FormID: "createQuiz",
			Submission: url.Values{
				"name":             {"Algebra"},
				render.ActionField: {render.AddItemAction("questions")},
			},
			OnSubmit: onSubmit,
		})
		if err != nil {
			t.Fatalf("render form: %v", err)
		}
		if result.Action.Kind != render.ActionAdd {
			t.Fatalf("action = %v", result.Action)
		}
		if got := result.Form.ItemCount("questions"); got != 1 {
			t.Fatalf("item count = %d", got)
		}
		if !strings.Contains(string(result.Body), `name="questions.0.prompt"`) {
			t.Fatalf("expected new item input:\n%s", result.Body)
		}
	})

	t.Run("valid submit calls handler", func(t *testing.T) {
		received = nil
		result, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{
			FormID:     "createQuiz",
			Submission: url.Values{"name": {"Algebra"}, "desc": {""}},
			OnSubmit:   onSubmit,
		})
		if err != nil {
			t.Fatalf("render form: %v", err)
		}
		if !result.Submitted() {
			t.Fatalf("expected successful submit, got %v", result.SubmitErr)
		}
		want := map[string]any{"name": "Algebra", "desc": "", "questions": []any{}}
		if diff := cmp.Diff(want, received); diff != "" {
			t.Fatalf("handler payload mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRenderFormServerErrors(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(newStore(t)))

	result, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{
		FormID: "createQuiz",
		Values: map[string]any{"name": "Algebra"},
		ServerErrors: map[string][]string{
			"body.name": {"name already taken"},
			"_form":     {"quota exceeded"},
		},
	})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	out := string(result.Body)
	if !strings.Contains(out, "name already taken") || !strings.Contains(out, "quota exceeded") {
		t.Fatalf("expected server errors in output:\n%s", out)
	}
}

func TestRenderFormArabicLocale(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(newStore(t)), orchestrator.WithDefaultLocale("ar"))

	result, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{FormID: "createQuiz"})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	if !strings.Contains(string(result.Body), `dir="rtl"`) {
		t.Fatalf("expected rtl form:\n%s", result.Body)
	}
}

func TestRenderFormErrors(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(newStore(t)))
	ctx := context.Background()

	if _, err := orch.RenderForm(ctx, orchestrator.FormRequest{}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if _, err := orch.RenderForm(ctx, orchestrator.FormRequest{FormID: "nope"}); !errors.Is(err, loader.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	if _, err := orch.RenderForm(ctx, orchestrator.FormRequest{FormID: "createQuiz", Renderer: "pdf"}); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := orch.RenderForm(cancelled, orchestrator.FormRequest{FormID: "createQuiz"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type captureRenderer struct {
	options render.RenderOptions
	def     model.FormDefinition
}

func (c *captureRenderer) Name() string        { return "capture" }
func (c *captureRenderer) ContentType() string { return "text/plain" }
func (c *captureRenderer) Render(_ context.Context, f *form.Form, options render.RenderOptions) ([]byte, error) {
	c.options = options
	c.def = f.Definition()
	return []byte("ok"), nil
}

func TestRenderFormThemeAndTransformer(t *testing.T) {
	capture := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(capture)

	manifest := &theme.Manifest{
		Name:   "garden",
		Tokens: map[string]string{"color.primary": "#0a5"},
	}
	preset, err := orchestrator.NewJSONPresetTransformer([]byte(`{
		"createQuiz": {
			"titleKey": "quiz.create.title",
			"fields": {"questions.prompt": {"label": "Prompt text"}}
		}
	}`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}

	store := newStore(t)
	orch := orchestrator.New(
		orchestrator.WithStore(store),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer("capture"),
		orchestrator.WithThemeSelector(render.NewManifestSelector("garden", "", manifest)),
		orchestrator.WithDefinitionTransformer(preset),
	)

	if _, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{FormID: "createQuiz"}); err != nil {
		t.Fatalf("render form: %v", err)
	}
	if capture.options.Theme == nil || capture.options.Theme.CSSVars["--color-primary"] != "#0a5" {
		t.Fatalf("theme not resolved: %+v", capture.options.Theme)
	}
	if capture.options.Locale != "en" || capture.options.Translator == nil {
		t.Fatalf("locale/translator not defaulted: %+v", capture.options)
	}
	if capture.def.TitleKey != "quiz.create.title" || capture.def.Fields[2].Fields[0].Label != "Prompt text" {
		t.Fatalf("transformer not applied: %+v", capture.def)
	}

	stored, _ := store.Form("createQuiz")
	if stored.TitleKey != "" || stored.Fields[2].Fields[0].Label != "" {
		t.Fatalf("stored definition mutated: %+v", stored)
	}
}

func TestJSONPresetTransformerUnknownField(t *testing.T) {
	preset, err := orchestrator.NewJSONPresetTransformer([]byte(`{"createQuiz": {"fields": {"missing": {"label": "x"}}}}`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	orch := orchestrator.New(orchestrator.WithStore(newStore(t)), orchestrator.WithDefinitionTransformer(preset))
	if _, err := orch.RenderForm(context.Background(), orchestrator.FormRequest{FormID: "createQuiz"}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := orchestrator.NewJSONPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected empty document error")
	}
}

func TestRenderScreenRestoresTableState(t *testing.T) {
	var calls []table.Query
	orch := orchestrator.New(
		orchestrator.WithStore(newStore(t)),
		orchestrator.WithFetcher(studentFetcher(&calls)),
	)

	out, err := orch.RenderScreen(context.Background(), orchestrator.ScreenRequest{
		ScreenID: "students",
		Query:    url.Values{"roster.page": {"1"}},
		BasePath: "/screens/students",
	})
	if err != nil {
		t.Fatalf("render screen: %v", err)
	}
	html := string(out)

	if len(calls) != 1 || calls[0].PageIndex != 1 || calls[0].PageSize != 5 {
		t.Fatalf("unexpected fetches: %+v", calls)
	}
	if !strings.Contains(html, "<td>student-05</td>") || strings.Contains(html, "<td>student-04</td>") {
		t.Fatalf("expected second page:\n%s", html)
	}
	if !strings.Contains(html, `href="/screens/students?roster.page=2" rel="next"`) {
		t.Fatalf("expected next link under base path:\n%s", html)
	}
	if !strings.Contains(html, "Unknown component: chart") {
		t.Fatalf("expected unknown placeholder:\n%s", html)
	}
}

func TestRenderScreenOverrides(t *testing.T) {
	var calls []table.Query
	serverSide := true
	orch := orchestrator.New(
		orchestrator.WithStore(newStore(t)),
		orchestrator.WithFetcher(studentFetcher(&calls)),
		orchestrator.WithDataSourceOverrides([]orchestrator.DataSourceOverride{
			{ScreenID: "students", ComponentID: "roster", URL: "https://staging.test/students", PageSize: 3, ServerSide: &serverSide},
			{ScreenID: "other", ComponentID: "roster", URL: "https://ignored.test"},
		}),
	)

	out, err := orch.RenderScreen(context.Background(), orchestrator.ScreenRequest{
		ScreenID: "students",
		Components: map[string]model.ComponentFunc{
			"progress": func(_ context.Context, w io.Writer, node model.ComponentSchema) error {
				_, err := io.WriteString(w, "<canvas id=\""+node.ID+"\"></canvas>")
				return err
			},
		},
	})
	if err != nil {
		t.Fatalf("render screen: %v", err)
	}
	if len(calls) != 1 || calls[0].URL != "https://staging.test/students" || calls[0].PageSize != 3 || !calls[0].ServerSide {
		t.Fatalf("override not applied: %+v", calls)
	}
	if !strings.Contains(string(out), `<canvas id="progress"></canvas>`) {
		t.Fatalf("component func not used:\n%s", out)
	}

	stored, _ := orch.Store().Screen("students")
	if stored.Components[0].DataSource.URL != "https://api.test/students" {
		t.Fatalf("stored schema mutated: %+v", stored.Components[0].DataSource)
	}
}

func TestRenderScreenNotFound(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithStore(newStore(t)))
	if _, err := orch.RenderScreen(context.Background(), orchestrator.ScreenRequest{ScreenID: "nope"}); !errors.Is(err, loader.ErrScreenNotFound) {
		t.Fatalf("expected ErrScreenNotFound, got %v", err)
	}
}

type stubSource struct{}

func (stubSource) Location() string            { return "memory://quizzes.yaml" }
func (stubSource) Kind() pkgopenapi.SourceKind { return pkgopenapi.SourceKindFile }

type stubLoader struct{}

func (stubLoader) Load(_ context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	return pkgopenapi.MustNewDocument(src, []byte("{}")), nil
}

type stubParser struct {
	operations map[string]pkgopenapi.Operation
}

func (p stubParser) Operations(context.Context, pkgopenapi.Document) (map[string]pkgopenapi.Operation, error) {
	return p.operations, nil
}

func TestImportOpenAPIRegistersDefinition(t *testing.T) {
	request := pkgopenapi.Schema{
		Type: "object",
		Properties: map[string]pkgopenapi.Schema{
			"title": {Type: "string"},
		},
		Required: []string{"title"},
	}
	parser := stubParser{operations: map[string]pkgopenapi.Operation{
		"createLesson": pkgopenapi.MustNewOperation("createLesson", "POST", "/lessons", request),
	}}

	store := loader.NewStore()
	orch := orchestrator.New(
		orchestrator.WithStore(store),
		orchestrator.WithOpenAPI(stubLoader{}, parser),
	)

	def, err := orch.ImportOpenAPI(context.Background(), stubSource{}, "createLesson")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if def.ID != "createLesson" || len(def.Fields) != 1 || !def.Fields[0].Required {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if _, ok := store.Form("createLesson"); !ok {
		t.Fatalf("definition not registered")
	}

	if _, err := orch.ImportOpenAPI(context.Background(), stubSource{}, "missing"); err == nil {
		t.Fatalf("expected missing operation error")
	}
}
