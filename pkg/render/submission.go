package render

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/model"
)

// ActionField is the name of the submit buttons that edit arrays.
const ActionField = "_action"

// ErrInvalidAction reports a malformed _action value.
var ErrInvalidAction = errors.New("render: invalid form action")

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying token under name, e.g.
// "_csrf".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// LocaleField carries the render locale back on submit.
func LocaleField(locale string) HiddenField {
	return Hidden("_locale", locale)
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns fields ordered by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	result := make([]HiddenField, 0, len(fields))
	for name, value := range fields {
		if name = strings.TrimSpace(name); name != "" {
			result = append(result, HiddenField{Name: name, Value: value})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// ActionKind identifies what a posted form asks for.
type ActionKind string

const (
	ActionSubmit ActionKind = "submit"
	ActionReset  ActionKind = "reset"
	ActionAdd    ActionKind = "add"
	ActionRemove ActionKind = "remove"
)

// Action is a decoded _action value.
type Action struct {
	Kind  ActionKind
	Path  string
	Index int
}

// AddItemAction encodes the value of an array's add button.
func AddItemAction(path string) string {
	return string(ActionAdd) + ":" + path
}

// RemoveItemAction encodes the value of an item's remove button.
func RemoveItemAction(path string, index int) string {
	return string(ActionRemove) + ":" + path + ":" + strconv.Itoa(index)
}

// ParseAction decodes "add:items", "remove:items:1", "reset" and "submit".
// An empty value is a submit.
func ParseAction(raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", string(ActionSubmit):
		return Action{Kind: ActionSubmit}, nil
	case string(ActionReset):
		return Action{Kind: ActionReset}, nil
	}

	kind, rest, _ := strings.Cut(raw, ":")
	switch ActionKind(kind) {
	case ActionAdd:
		if rest == "" {
			return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, raw)
		}
		return Action{Kind: ActionAdd, Path: rest}, nil
	case ActionRemove:
		idx := strings.LastIndex(rest, ":")
		if idx <= 0 {
			return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, raw)
		}
		index, err := strconv.Atoi(rest[idx+1:])
		if err != nil || index < 0 {
			return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, raw)
		}
		return Action{Kind: ActionRemove, Path: rest[:idx], Index: index}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
}

// ApplySubmission copies a posted form onto f and performs the posted
// action. Values use the input names the HTML renderer emits: group children
// under their own key, array children as "items.0.title", repeated names for
// multi-valued fields. Unchecked single checkboxes are absent from posts and
// become false. Submit actions are returned for the caller to run.
func ApplySubmission(f *form.Form, posted url.Values) (Action, error) {
	action, err := ParseAction(posted.Get(ActionField))
	if err != nil {
		return Action{}, err
	}
	if action.Kind == ActionReset {
		f.Reset()
		return action, nil
	}

	decoded := decodeFields(f.Definition().Fields, "", posted)
	for _, field := range model.Flatten(f.Definition().Fields) {
		value, ok := decoded[field.Key]
		if !ok {
			continue
		}
		if err := f.SetFieldValue(field.Key, value); err != nil {
			return action, err
		}
	}

	switch action.Kind {
	case ActionAdd:
		if _, err := f.AddItem(action.Path); err != nil {
			return action, err
		}
	case ActionRemove:
		if err := f.RemoveItem(action.Path, action.Index); err != nil {
			return action, err
		}
	}
	return action, nil
}

func decodeFields(fields []model.FieldDefinition, prefix string, posted url.Values) map[string]any {
	out := make(map[string]any)
	for _, field := range model.Flatten(fields) {
		name := prefix + field.Key
		switch {
		case field.Type == model.FieldTypeArray:
			count := postedItemCount(name, posted)
			items := make([]any, 0, count)
			for i := 0; i < count; i++ {
				items = append(items, decodeFields(field.Fields, name+"."+strconv.Itoa(i)+".", posted))
			}
			if count > 0 || posted.Has(ItemCountField(name)) {
				out[field.Key] = items
			}
		case field.Type == model.FieldTypeMultiFile:
			if posted.Has(name) {
				out[field.Key] = nonEmpty(posted[name])
			}
		case field.Type == model.FieldTypeCheckbox && !field.IsMultiValued():
			out[field.Key] = checked(posted[name])
		case field.IsMultiValued():
			out[field.Key] = nonEmpty(posted[name])
		default:
			if posted.Has(name) {
				out[field.Key] = posted.Get(name)
			}
		}
	}
	return out
}

func nonEmpty(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ItemCountField names the hidden input carrying an array's item count.
func ItemCountField(path string) string {
	return path + "._count"
}

// postedItemCount reads the array's count field, falling back to one past the
// highest item index present under name.
func postedItemCount(name string, posted url.Values) int {
	if raw := posted.Get(ItemCountField(name)); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	prefix := name + "."
	count := 0
	for key := range posted {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		head, _, _ := strings.Cut(rest, ".")
		if index, err := strconv.Atoi(head); err == nil && index >= count {
			count = index + 1
		}
	}
	return count
}

func checked(values []string) bool {
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "off":
		default:
			return true
		}
	}
	return false
}
