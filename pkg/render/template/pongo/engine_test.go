package pongo_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formscreen/pkg/render/template/pongo"
)

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tmpl":      {Data: []byte(`Hello {{ name }}`)},
		"use-global.tmpl": {Data: []byte(`env={{ settings.env }}`)},
		"escape.tmpl":     {Data: []byte(`{{ value }}|{{ trusted|safe }}`)},
		"call.tmpl":       {Data: []byte(`{{ t("table.next") }} {{ key|humanize }}`)},
	}
	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesOutputs(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Sara"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hello Sara" {
		t.Fatalf("unexpected result %q", result)
	}
	if buf.String() != result {
		t.Fatalf("writer mismatch: %q", buf.String())
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t, pongo.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_AutoescapesUntrustedValues(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("escape", map[string]any{
		"value":   `<script>alert(1)</script>`,
		"trusted": `<b>ok</b>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(result, "<script>") {
		t.Fatalf("value was not escaped: %q", result)
	}
	if !strings.HasSuffix(result, "|<b>ok</b>") {
		t.Fatalf("safe value was escaped: %q", result)
	}
}

func TestEngine_CallsFunctionsAndHumanize(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("call", map[string]any{
		"t":   func(key string) string { return "[" + key + "]" },
		"key": "studentName",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "[table.next] Student Name" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_RenderStringAndStructData(t *testing.T) {
	engine := newEngine(t)

	type view struct {
		Title string `json:"title"`
	}
	result, err := engine.Render("<h1>{{ title }}</h1>", view{Title: "Quiz"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "<h1>Quiz</h1>" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout_test", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout_test", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected duplicate filter error")
	}

	result, err := engine.RenderString(`{{ name|shout_test }}`, map[string]any{"name": "ali"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ALI!" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatal("expected error without templates")
	}
}
