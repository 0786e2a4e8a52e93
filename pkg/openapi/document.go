package openapi

import (
	"errors"
	"fmt"
	"strings"
)

// Document is a loaded OpenAPI payload together with where it came from.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw so later changes by the caller do not leak in.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, ErrNoSource
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, src.Location())
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument is NewDocument for fixtures.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Operation is what a form import needs from one API operation: its
// identity, the request body schema and the operation level x-formscreen
// extensions.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	RequestBody Schema
	Extensions  map[string]any
}

// NewOperation requires id, method and path.
func NewOperation(id, method, path string, body Schema) (Operation, error) {
	switch {
	case id == "":
		return Operation{}, errors.New("openapi: operation id is required")
	case method == "":
		return Operation{}, fmt.Errorf("openapi: operation %q has no method", id)
	case path == "":
		return Operation{}, fmt.Errorf("openapi: operation %q has no path", id)
	}
	return Operation{ID: id, Method: strings.ToUpper(method), Path: path, RequestBody: body}, nil
}

// MustNewOperation is NewOperation for fixtures.
func MustNewOperation(id, method, path string, body Schema) Operation {
	op, err := NewOperation(id, method, path, body)
	if err != nil {
		panic(err)
	}
	return op
}

// Schema is the part of a JSON schema the form builder maps onto fields.
// Extensions keeps only the x-formscreen vendor keys.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Title       string
	Required    []string
	Properties  map[string]Schema
	Items       *Schema
	Enum        []any
	Description string
	Default     any
	Minimum     *float64
	Maximum     *float64
	MinLength   *int
	MaxLength   *int
	Pattern     string
	MaxItems    *int
	Extensions  map[string]any
}

// DebugString summarizes the schema for log lines.
func (s Schema) DebugString() string {
	var b strings.Builder
	b.WriteString("type=")
	b.WriteString(s.Type)
	if s.Ref != "" {
		b.WriteString(",ref=")
		b.WriteString(s.Ref)
	}
	if len(s.Required) > 0 {
		fmt.Fprintf(&b, ",required=%d", len(s.Required))
	}
	if len(s.Properties) > 0 {
		fmt.Fprintf(&b, ",properties=%d", len(s.Properties))
	}
	if s.Items != nil {
		b.WriteString(",items=true")
	}
	return b.String()
}
