package screen

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/goliatone/go-formscreen/pkg/render/template"
	"github.com/goliatone/go-formscreen/pkg/render/template/pongo"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in component templates so callers can layer
// overrides on top of them.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     template.TemplateRenderer
	defaultEngineErr  error
)

func defaultTemplates() (template.TemplateRenderer, error) {
	defaultEngineOnce.Do(func() {
		defaultEngine, defaultEngineErr = pongo.New(pongo.WithFS(TemplatesFS()))
	})
	return defaultEngine, defaultEngineErr
}
