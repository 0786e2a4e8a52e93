package screen_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/screen"
)

func TestDefaultRegistryNames(t *testing.T) {
	got := screen.NewDefaultRegistry().Names()
	want := []string{"container", "filters", "search", "table", "title"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := screen.NewRegistry()
	if err := r.Register(" ", screen.Descriptor{Render: noop}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := r.Register("chart", screen.Descriptor{}); err == nil {
		t.Fatal("expected error for nil renderer")
	}
	if err := r.Register(" Chart ", screen.Descriptor{Render: noop}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if d, ok := r.Descriptor("CHART"); !ok || d.Name != "chart" {
		t.Fatalf("lookup should be case-insensitive, got %+v %v", d, ok)
	}
}

func TestRegistry_CloneIsIsolated(t *testing.T) {
	base := screen.NewDefaultRegistry()
	clone := base.Clone()
	clone.MustRegister("chart", screen.Descriptor{Render: noop})

	if _, ok := base.Descriptor("chart"); ok {
		t.Fatal("clone mutation leaked into base registry")
	}
}

func TestScreen_CustomRegistryRenderer(t *testing.T) {
	registry := screen.NewDefaultRegistry()
	registry.MustRegister("chart", screen.Descriptor{
		Render: func(ctx context.Context, w io.Writer, node model.ComponentSchema, env *screen.Env) error {
			_, err := io.WriteString(w, `<canvas data-series="`+node.Prop("series")+`"></canvas>`)
			return err
		},
	})

	s, err := screen.New(model.ScreenSchema{
		ID:         "s",
		Components: []model.ComponentSchema{{ID: "c", Type: "chart", Props: map[string]any{"series": "scores"}}},
	}, screen.WithRegistry(registry))
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}

	var b strings.Builder
	if err := s.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(b.String(), `<canvas data-series="scores"></canvas>`) {
		t.Fatalf("custom renderer not used:\n%s", b.String())
	}
	if strings.Contains(b.String(), "Unknown component") {
		t.Fatalf("placeholder rendered for registered type:\n%s", b.String())
	}
}

func noop(context.Context, io.Writer, model.ComponentSchema, *screen.Env) error {
	return nil
}
