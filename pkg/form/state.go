package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
)

type nodeKind int

const (
	leafNode nodeKind = iota
	groupNode
	arrayNode
	itemNode
)

// node is a resolved path. container is the namespace map owning the field's
// slot; prefix is the dotted path of that namespace including the trailing dot.
type node struct {
	field     model.FieldDefinition
	kind      nodeKind
	path      string
	prefix    string
	container map[string]any
	index     int
}

func (n node) childPrefix() string {
	if n.kind == itemNode {
		return fmt.Sprintf("%s%s.%d.", n.prefix, n.field.Key, n.index)
	}
	return n.prefix
}

func (n node) childFields() []model.FieldDefinition {
	return n.field.Fields
}

func (n node) childContainer() map[string]any {
	if n.kind != itemNode {
		return n.container
	}
	items, _ := n.container[n.field.Key].([]any)
	item, _ := items[n.index].(map[string]any)
	return item
}

// resolve walks the definition and the live values together so array indices
// are checked against the current repetitions.
func resolve(fields []model.FieldDefinition, values map[string]any, path string) (node, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return node{}, false
	}

	segments := strings.Split(path, ".")
	container := values
	prefix := ""

	for i := 0; i < len(segments); i++ {
		segment := segments[i]
		last := i == len(segments)-1

		field, ok := model.Lookup(fields, segment)
		if !ok {
			group, isGroup := model.FindGroup(fields, segment)
			if !isGroup || !last {
				return node{}, false
			}
			return node{field: group, kind: groupNode, path: path, prefix: prefix, container: container}, true
		}

		if last {
			kind := leafNode
			if field.Type == model.FieldTypeArray {
				kind = arrayNode
			}
			return node{field: field, kind: kind, path: path, prefix: prefix, container: container}, true
		}

		if field.Type != model.FieldTypeArray {
			return node{}, false
		}

		i++
		idx, err := strconv.Atoi(segments[i])
		if err != nil {
			return node{}, false
		}
		items, _ := container[field.Key].([]any)
		if idx < 0 || idx >= len(items) {
			return node{}, false
		}
		item, ok := items[idx].(map[string]any)
		if !ok {
			return node{}, false
		}
		if i == len(segments)-1 {
			return node{field: field, kind: itemNode, path: path, prefix: prefix, container: container, index: idx}, true
		}

		prefix = fmt.Sprintf("%s%s.%d.", prefix, field.Key, idx)
		fields = field.Fields
		container = item
	}
	return node{}, false
}

// seed fills dest with the initial value of every field in the namespace.
// Fields of unknown type hold no value.
func seed(fields []model.FieldDefinition, dest map[string]any) {
	for _, field := range model.Flatten(fields) {
		if !field.Type.IsKnown() {
			continue
		}
		if field.Type == model.FieldTypeArray {
			items, err := normalizeItems(field, model.InitialValue(field))
			if err != nil {
				items = []any{}
			}
			dest[field.Key] = items
			continue
		}
		dest[field.Key] = coerce(field, model.InitialValue(field))
	}
}

func newItem(field model.FieldDefinition) map[string]any {
	item := make(map[string]any, len(field.Fields))
	seed(field.Fields, item)
	return item
}

// assign writes value into the namespace slot owned by field.
func assign(field model.FieldDefinition, container map[string]any, value any) error {
	switch field.Type {
	case model.FieldTypeArray:
		items, err := normalizeItems(field, value)
		if err != nil {
			return err
		}
		container[field.Key] = items
	case model.FieldTypeGroup:
		return assignMap(field.Fields, container, value)
	default:
		container[field.Key] = coerce(field, value)
	}
	return nil
}

// assignMap copies known keys of value into the namespace; unknown keys are
// dropped.
func assignMap(fields []model.FieldDefinition, container map[string]any, value any) error {
	values, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: expected object, got %T", ErrInvalidValue, value)
	}
	for _, child := range model.Flatten(fields) {
		raw, present := values[child.Key]
		if !present {
			continue
		}
		if err := assign(child, container, raw); err != nil {
			return err
		}
	}
	return nil
}

func normalizeItems(field model.FieldDefinition, value any) ([]any, error) {
	var raw []any
	switch typed := value.(type) {
	case nil:
		return []any{}, nil
	case []any:
		raw = typed
	case []map[string]any:
		raw = make([]any, len(typed))
		for i, item := range typed {
			raw[i] = item
		}
	default:
		return nil, fmt.Errorf("%w: array %q expects a list, got %T", ErrInvalidValue, field.Key, value)
	}

	items := make([]any, 0, len(raw))
	for _, entry := range raw {
		item := newItem(field)
		if entry != nil {
			if err := assignMap(field.Fields, item, entry); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// coerce converts transport values (form posts, prompts, JSON) into the
// type-appropriate runtime value. Unparseable numbers are kept raw so the
// number rule reports them.
func coerce(field model.FieldDefinition, value any) any {
	switch {
	case field.IsMultiValued():
		return coerceSlice(field, value)
	case field.Type == model.FieldTypeNumber:
		return coerceNumber(value)
	case field.Type == model.FieldTypeCheckbox:
		return coerceBool(value)
	case len(field.Options) > 0:
		return matchOption(field, value)
	case value == nil:
		return ""
	default:
		return value
	}
}

func coerceNumber(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
		return typed
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case int32:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return typed
	}
}

func coerceBool(value any) any {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "on", "1", "yes":
			return true
		default:
			return false
		}
	default:
		return typed
	}
}

func coerceSlice(field model.FieldDefinition, value any) []any {
	var out []any
	switch typed := value.(type) {
	case nil:
		return []any{}
	case []any:
		out = make([]any, len(typed))
		copy(out, typed)
	case []string:
		out = make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
	case []model.FileValue:
		out = make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
	case string:
		if typed == "" {
			return []any{}
		}
		out = []any{typed}
	default:
		out = []any{typed}
	}
	if len(field.Options) > 0 {
		for i, v := range out {
			out[i] = matchOption(field, v)
		}
	}
	return out
}

// matchOption maps a string back to the typed option value it renders as.
func matchOption(field model.FieldDefinition, value any) any {
	if value == nil {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return value
	}
	for _, opt := range field.Options {
		if fmt.Sprint(opt.Value) == text {
			return opt.Value
		}
	}
	return value
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	current := any(root)
	for _, segment := range strings.Split(path, ".") {
		switch container := current.(type) {
		case map[string]any:
			next, ok := container[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(container) {
				return nil, false
			}
			current = container[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
