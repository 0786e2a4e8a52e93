package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ComponentFunc renders a screen node directly, bypassing the type registry.
type ComponentFunc func(ctx context.Context, w io.Writer, node ComponentSchema) error

// DataSourceKind selects where a data source reads rows from.
type DataSourceKind string

const (
	DataSourceStatic DataSourceKind = "static"
	DataSourceREST   DataSourceKind = "rest"
)

// PaginationType selects the paging scheme of a remote collection.
type PaginationType string

const (
	PaginationOffset PaginationType = "offset"
	PaginationCursor PaginationType = "cursor"
)

// DefaultPageSize applies when a data source omits pagination.pageSize.
const DefaultPageSize = 10

// Pagination describes how a collection is paged.
type Pagination struct {
	Type     PaginationType `json:"type,omitempty" yaml:"type,omitempty"`
	PageSize int            `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
}

// DataSource describes the collection behind a table component.
type DataSource struct {
	Kind       DataSourceKind   `json:"kind" yaml:"kind"`
	URL        string           `json:"url,omitempty" yaml:"url,omitempty"`
	Rows       []map[string]any `json:"rows,omitempty" yaml:"rows,omitempty"`
	Pagination Pagination       `json:"pagination,omitempty" yaml:"pagination,omitempty"`
	ServerSide bool             `json:"serverSide,omitempty" yaml:"serverSide,omitempty"`
}

// PageSize returns the configured page size or DefaultPageSize.
func (d *DataSource) PageSize() int {
	if d == nil || d.Pagination.PageSize <= 0 {
		return DefaultPageSize
	}
	return d.Pagination.PageSize
}

// ComponentSchema is one node of a screen. Component, when set, always wins
// over registry lookup by Type.
type ComponentSchema struct {
	ID         string            `json:"id" yaml:"id"`
	Type       string            `json:"type" yaml:"type"`
	Props      map[string]any    `json:"props,omitempty" yaml:"props,omitempty"`
	DataSource *DataSource       `json:"dataSource,omitempty" yaml:"dataSource,omitempty"`
	Children   []ComponentSchema `json:"children,omitempty" yaml:"children,omitempty"`
	Component  ComponentFunc     `json:"-" yaml:"-"`
}

// Prop returns a string prop or the empty string.
func (c ComponentSchema) Prop(name string) string {
	if c.Props == nil {
		return ""
	}
	switch v := c.Props[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ScreenSchema is the declarative input of the screen renderer.
type ScreenSchema struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	TitleKey    string            `json:"titleKey,omitempty" yaml:"titleKey,omitempty"`
	Subtitle    string            `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	SubtitleKey string            `json:"subtitleKey,omitempty" yaml:"subtitleKey,omitempty"`
	Components  []ComponentSchema `json:"components" yaml:"components"`
}

var (
	ErrScreenIDMissing    = errors.New("model: screen id is required")
	ErrComponentIDMissing = errors.New("model: component id is required")
	ErrComponentType      = errors.New("model: component type is required")
)

// Validate checks that component ids are present and unique across nesting
// and that data sources are usable.
func (s ScreenSchema) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrScreenIDMissing
	}
	return validateComponents(s.Components, make(map[string]struct{}))
}

func validateComponents(nodes []ComponentSchema, seen map[string]struct{}) error {
	for idx, node := range nodes {
		id := strings.TrimSpace(node.ID)
		if id == "" {
			return fmt.Errorf("%w at components[%d]", ErrComponentIDMissing, idx)
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("model: duplicate component id %q", id)
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(node.Type) == "" && node.Component == nil {
			return fmt.Errorf("%w: component %q", ErrComponentType, id)
		}
		if ds := node.DataSource; ds != nil {
			switch ds.Kind {
			case DataSourceStatic:
			case DataSourceREST:
				if strings.TrimSpace(ds.URL) == "" {
					return fmt.Errorf("model: component %q rest data source requires url", id)
				}
			default:
				return fmt.Errorf("model: component %q has unknown data source kind %q", id, ds.Kind)
			}
			switch ds.Pagination.Type {
			case "", PaginationOffset, PaginationCursor:
			default:
				return fmt.Errorf("model: component %q has unknown pagination type %q", id, ds.Pagination.Type)
			}
		}
		if err := validateComponents(node.Children, seen); err != nil {
			return err
		}
	}
	return nil
}
