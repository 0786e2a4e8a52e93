// Package openapi imports quiz forms from OpenAPI 3 documents. Loader and
// Parser describe the two stages that turn a source into operations; the
// kin-openapi backed implementations live under internal/openapi and are
// constructed from the root formscreen package. Builder maps an operation's
// request body onto a model.FormDefinition.
package openapi
