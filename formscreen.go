// Package formscreen exposes the most common entry points of the module:
// definition loading, the orchestrator and OpenAPI import.
package formscreen

import (
	"context"
	"io/fs"

	internalLoader "github.com/goliatone/go-formscreen/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formscreen/internal/openapi/parser"
	"github.com/goliatone/go-formscreen/pkg/loader"
	"github.com/goliatone/go-formscreen/pkg/model"
	pkgopenapi "github.com/goliatone/go-formscreen/pkg/openapi"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
	"github.com/goliatone/go-formscreen/pkg/render"
	"github.com/goliatone/go-formscreen/pkg/renderers/html"
)

// RenderOptions describes per-request data renderers use without changing
// the definition.
type RenderOptions = render.RenderOptions

// FormRequest and ScreenRequest alias the orchestrator request types.
type (
	FormRequest   = orchestrator.FormRequest
	ScreenRequest = orchestrator.ScreenRequest
)

// NewLoader constructs an OpenAPI loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	cfg := pkgopenapi.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser constructs an OpenAPI parser backed by the internal
// implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	cfg := pkgopenapi.NewParserOptions(options...)
	return internalParser.New(cfg)
}

// LoadDefinitions reads form and screen definitions from fsys.
func LoadDefinitions(fsys fs.FS) (*loader.Store, error) {
	return loader.LoadFS(fsys)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// ImportOpenAPI builds a form definition from the request body of one
// OpenAPI operation.
func ImportOpenAPI(ctx context.Context, src pkgopenapi.Source, operationID string, options ...pkgopenapi.BuilderOption) (model.FormDefinition, error) {
	orch := orchestrator.New(orchestrator.WithOpenAPI(NewLoader(pkgopenapi.WithDefaultSources()), NewParser()))
	return orch.ImportOpenAPI(ctx, src, operationID, options...)
}

// EmbeddedTemplates exposes the built-in HTML form templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
