package orchestrator

import (
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// DataSourceOverride retargets a table component of a stored screen, e.g. to
// point a checked-in screen at a staging API. Zero values leave the stored
// setting untouched.
type DataSourceOverride struct {
	ScreenID    string
	ComponentID string
	URL         string
	PageSize    int
	ServerSide  *bool
}

// WithDataSourceOverrides registers overrides applied on every RenderScreen.
// Later overrides for the same component win.
func WithDataSourceOverrides(overrides []DataSourceOverride) Option {
	cloned := append([]DataSourceOverride(nil), overrides...)
	return func(o *Orchestrator) {
		if len(cloned) == 0 {
			return
		}
		if o.overrides == nil {
			o.overrides = make(map[string][]DataSourceOverride)
		}
		for _, override := range cloned {
			screenID := strings.TrimSpace(override.ScreenID)
			if screenID == "" || strings.TrimSpace(override.ComponentID) == "" {
				continue
			}
			o.overrides[screenID] = append(o.overrides[screenID], override)
		}
	}
}

// applyDataSourceOverrides returns a copy of nodes with overrides and
// per-request component functions applied. Stored schemas are never mutated.
func (o *Orchestrator) applyDataSourceOverrides(screenID string, nodes []model.ComponentSchema, components map[string]model.ComponentFunc) []model.ComponentSchema {
	overrides := o.overrides[screenID]
	if len(overrides) == 0 && len(components) == 0 {
		return nodes
	}
	return overrideNodes(nodes, overrides, components)
}

func overrideNodes(nodes []model.ComponentSchema, overrides []DataSourceOverride, components map[string]model.ComponentFunc) []model.ComponentSchema {
	if nodes == nil {
		return nil
	}
	out := make([]model.ComponentSchema, len(nodes))
	for i, node := range nodes {
		if fn, ok := components[node.ID]; ok && fn != nil {
			node.Component = fn
		}
		if node.DataSource != nil {
			ds := *node.DataSource
			for _, override := range overrides {
				if override.ComponentID != node.ID {
					continue
				}
				if override.URL != "" {
					ds.URL = override.URL
				}
				if override.PageSize > 0 {
					ds.Pagination.PageSize = override.PageSize
				}
				if override.ServerSide != nil {
					ds.ServerSide = *override.ServerSide
				}
			}
			node.DataSource = &ds
		}
		node.Children = overrideNodes(node.Children, overrides, components)
		out[i] = node
	}
	return out
}
