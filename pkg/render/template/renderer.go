package template

import (
	"io"
)

// TemplateRenderer is the contract renderers rely on to turn named templates
// or inline template strings into markup. Data is converted to plain maps
// before execution, so values must be JSON friendly; function values are
// passed through and can be called from templates.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
