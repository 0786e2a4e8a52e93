package render

import (
	"context"

	"github.com/goliatone/go-formscreen/pkg/form"
)

// Renderer turns a live form into a byte representation (HTML, text, JSON).
// Renderers read the form's values and error state; they never mutate it.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f *form.Form, options RenderOptions) ([]byte, error)
}
