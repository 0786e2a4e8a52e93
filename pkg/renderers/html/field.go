package html

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// Field is a definition bound to its path in a live form.
type Field struct {
	model.FieldDefinition
	Path string
	// Prefix is the namespace the field lives in, e.g. "questions.0.".
	Prefix string
	ID     string
	Value  any
	Error  string
	// Items is the repetition count of array fields.
	Items int
}

func controlID(path string) string {
	return "fs-field-" + strings.ReplaceAll(path, ".", "-")
}

type attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Flag  bool   `json:"flag"`
}

type optionView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// controlView is the template payload shared by the leaf control templates.
func controlView(field Field) map[string]any {
	var attrs []attr
	if field.Required {
		attrs = append(attrs, attr{Name: "required", Flag: true}, attr{Name: "aria-required", Value: "true"})
	}
	if field.Error != "" {
		attrs = append(attrs,
			attr{Name: "aria-invalid", Value: "true"},
			attr{Name: "aria-describedby", Value: field.ID + "-error"},
		)
	}
	if rules := field.Validation; rules != nil {
		if rules.MinLength != nil {
			attrs = append(attrs, attr{Name: "minlength", Value: strconv.Itoa(*rules.MinLength)})
		}
		if rules.MaxLength != nil {
			attrs = append(attrs, attr{Name: "maxlength", Value: strconv.Itoa(*rules.MaxLength)})
		}
		if rules.Min != nil {
			attrs = append(attrs, attr{Name: "min", Value: formatNumber(*rules.Min)})
		}
		if rules.Max != nil {
			attrs = append(attrs, attr{Name: "max", Value: formatNumber(*rules.Max)})
		}
		if rules.Pattern != "" && field.Type.IsTextual() {
			attrs = append(attrs, attr{Name: "pattern", Value: rules.Pattern})
		}
		if len(rules.AcceptedFileTypes) > 0 {
			attrs = append(attrs, attr{Name: "accept", Value: strings.Join(rules.AcceptedFileTypes, ",")})
		}
	}

	selected := selectedValues(field.Value)
	options := make([]optionView, 0, len(field.Options))
	for i, option := range field.Options {
		value := valueString(option.Value)
		_, isSelected := selected[value]
		options = append(options, optionView{
			ID:       field.ID + "-" + strconv.Itoa(i),
			Label:    option.Label,
			Value:    value,
			Selected: isSelected,
		})
	}

	view := map[string]any{
		"id":          field.ID,
		"name":        field.Path,
		"type":        string(field.Type),
		"inputType":   inputType(field.Type),
		"label":       field.Label,
		"placeholder": field.Placeholder,
		"required":    field.Required,
		"multiple":    field.IsMultiValued(),
		"attrs":       attrs,
		"options":     options,
	}
	switch {
	case field.Type == model.FieldTypeCheckbox && !field.IsMultiValued():
		checked, _ := field.Value.(bool)
		view["checked"] = checked
	case field.Type == model.FieldTypeMultiFile:
		view["files"] = fileNames(field.Value)
	default:
		view["value"] = valueString(field.Value)
	}
	return view
}

func inputType(fieldType model.FieldType) string {
	switch fieldType {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypePassword:
		return "password"
	case model.FieldTypeNumber:
		return "number"
	default:
		return "text"
	}
}

func valueString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return formatNumber(typed)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func selectedValues(v any) map[string]struct{} {
	out := make(map[string]struct{})
	switch typed := v.(type) {
	case nil:
	case []any:
		for _, item := range typed {
			out[valueString(item)] = struct{}{}
		}
	default:
		if s := valueString(typed); s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func fileNames(v any) []string {
	items, _ := v.([]any)
	names := make([]string, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case model.FileValue:
			names = append(names, typed.Name)
		case map[string]any:
			names = append(names, valueString(typed["name"]))
		default:
			names = append(names, valueString(typed))
		}
	}
	return names
}

// wrapField adds the label, description and inline error around control.
func wrapField(field Field, control string, ownsLabel bool) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="fs-field fs-field-`)
	builder.WriteString(html.EscapeString(string(field.Type)))
	builder.WriteString(`" data-field="`)
	builder.WriteString(html.EscapeString(field.Path))
	builder.WriteString(`"`)
	if field.Error != "" {
		builder.WriteString(` data-invalid="true"`)
	}
	builder.WriteString(">\n")

	if !ownsLabel && strings.TrimSpace(field.Label) != "" {
		builder.WriteString(`<label for="`)
		builder.WriteString(html.EscapeString(field.ID))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(field.Label))
		if field.Required {
			builder.WriteString(` <span class="fs-required" aria-hidden="true">*</span>`)
		}
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if desc := strings.TrimSpace(field.Description); desc != "" {
		builder.WriteString(`<small class="fs-description">`)
		builder.WriteString(html.EscapeString(desc))
		builder.WriteString("</small>\n")
	}
	if field.Error != "" {
		builder.WriteString(`<p id="`)
		builder.WriteString(html.EscapeString(field.ID))
		builder.WriteString(`-error" class="fs-error" role="alert">`)
		builder.WriteString(html.EscapeString(field.Error))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

func unknownField(field Field, text string) string {
	return `<div class="fs-field fs-unknown-field" data-field="` + html.EscapeString(field.Path) +
		`" role="note">` + html.EscapeString(text) + "</div>\n"
}
