package table

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// ColumnsFromProps reads a "columns" prop. Entries may be plain ids or
// objects with id, header, headerKey and sortable. Columns are sortable
// unless an object sets sortable to false.
func ColumnsFromProps(props map[string]any) []Column {
	raw, ok := props["columns"].([]any)
	if !ok {
		return nil
	}
	columns := make([]Column, 0, len(raw))
	for _, entry := range raw {
		switch typed := entry.(type) {
		case string:
			if id := strings.TrimSpace(typed); id != "" {
				columns = append(columns, Column{ID: id, Header: model.DefaultLabeler(id), Sortable: true})
			}
		case map[string]any:
			id := strings.TrimSpace(stringValue(typed["id"]))
			if id == "" {
				continue
			}
			column := Column{
				ID:        id,
				Header:    stringValue(typed["header"]),
				HeaderKey: stringValue(typed["headerKey"]),
				Sortable:  true,
			}
			if sortable, ok := typed["sortable"].(bool); ok {
				column.Sortable = sortable
			}
			if column.Header == "" {
				column.Header = model.DefaultLabeler(id)
			}
			columns = append(columns, column)
		}
	}
	return columns
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
