package openapi

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// Vendor extensions read from request body schemas.
const (
	// ExtensionWidget forces a field type, e.g. "textarea" or "radio".
	ExtensionWidget = "x-formscreen-widget"
	// ExtensionOrder sorts properties; unordered properties follow by name.
	ExtensionOrder = "x-formscreen-order"
	// ExtensionLabelKey sets the translation key of the label.
	ExtensionLabelKey = "x-formscreen-label-key"
	// ExtensionOptionLabels lists option labels parallel to enum.
	ExtensionOptionLabels = "x-formscreen-option-labels"
	// ExtensionAccept lists accepted file extensions or MIME patterns.
	ExtensionAccept = "x-formscreen-accept"
	// ExtensionMaxFileSize caps each uploaded file in bytes.
	ExtensionMaxFileSize = "x-formscreen-max-file-size"
	// ExtensionItemLabel names one repetition of an array.
	ExtensionItemLabel = "x-formscreen-item-label"
)

var (
	// ErrNoRequestBody reports an operation without an object request body.
	ErrNoRequestBody      = errors.New("openapi builder: operation has no object request body")
	errOperationIDMissing = errors.New("openapi builder: operation id is required")
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger that reports skipped properties.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFormID overrides the form id, which defaults to the operation id.
func WithFormID(id string) BuilderOption {
	return func(b *Builder) {
		b.formID = strings.TrimSpace(id)
	}
}

// Builder converts OpenAPI operations into form definitions.
type Builder struct {
	logger *slog.Logger
	formID string
}

// NewBuilder creates a Builder with the supplied options.
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build maps the operation's request body onto a FormDefinition. Properties
// that have no form equivalent are skipped and logged.
func (b *Builder) Build(op Operation) (model.FormDefinition, error) {
	if op.ID == "" {
		return model.FormDefinition{}, errOperationIDMissing
	}
	body := op.RequestBody
	if len(body.Properties) == 0 || (body.Type != "object" && body.Type != "") {
		return model.FormDefinition{}, fmt.Errorf("%w: %s", ErrNoRequestBody, op.ID)
	}

	def := model.FormDefinition{
		ID:          op.ID,
		Title:       op.Summary,
		Description: op.Description,
		Action:      op.Path,
		Method:      strings.ToLower(op.Method),
	}
	if b.formID != "" {
		def.ID = b.formID
	}

	fields, err := b.fieldsFromObject(op.ID, body)
	if err != nil {
		return model.FormDefinition{}, err
	}
	def.Fields = fields

	if err := def.Validate(); err != nil {
		return model.FormDefinition{}, fmt.Errorf("openapi builder: %w", err)
	}
	return def, nil
}

func (b *Builder) fieldsFromObject(path string, schema Schema) ([]model.FieldDefinition, error) {
	requiredSet := make(map[string]struct{}, len(schema.Required))
	for _, item := range schema.Required {
		requiredSet[item] = struct{}{}
	}

	var fields []model.FieldDefinition
	for _, name := range orderedProperties(schema.Properties) {
		_, required := requiredSet[name]
		field, ok, err := b.fieldFromSchema(path+"."+name, name, schema.Properties[name], required)
		if err != nil {
			return nil, err
		}
		if ok {
			fields = append(fields, field)
		}
	}
	return fields, nil
}

func (b *Builder) fieldFromSchema(path, name string, schema Schema, required bool) (model.FieldDefinition, bool, error) {
	field := model.FieldDefinition{
		Key:         name,
		Label:       schema.Title,
		LabelKey:    stringExtension(schema.Extensions, ExtensionLabelKey),
		Description: schema.Description,
		Required:    required,
		Default:     schema.Default,
	}

	switch schema.Type {
	case "object":
		children, err := b.fieldsFromObject(path, schema)
		if err != nil {
			return field, false, err
		}
		if len(children) == 0 {
			b.skip(path, "object without properties")
			return field, false, nil
		}
		field.Type = model.FieldTypeGroup
		field.Fields = children
		field.Default = nil
	case "array":
		return b.fieldFromArray(path, field, schema)
	case "string", "integer", "number", "boolean":
		field.Type = primitiveType(schema)
		field.Options = optionsFromEnum(schema)
		field.Validation = validationFromSchema(schema)
	default:
		b.skip(path, "unsupported type "+schema.Type)
		return field, false, nil
	}

	if widget := model.FieldType(stringExtension(schema.Extensions, ExtensionWidget)); widget != "" {
		if !widget.IsKnown() || widget.IsComposite() != field.Type.IsComposite() {
			return field, false, fmt.Errorf("openapi builder: %s: widget %q does not fit type %q", path, widget, schema.Type)
		}
		field.Type = widget
	}
	return field, true, nil
}

func (b *Builder) fieldFromArray(path string, field model.FieldDefinition, schema Schema) (model.FieldDefinition, bool, error) {
	if schema.Items == nil {
		return field, false, fmt.Errorf("openapi builder: array field %q missing items", path)
	}
	items := *schema.Items

	switch {
	case items.Type == "object":
		children, err := b.fieldsFromObject(path, items)
		if err != nil {
			return field, false, err
		}
		if len(children) == 0 {
			b.skip(path, "array items without properties")
			return field, false, nil
		}
		field.Type = model.FieldTypeArray
		field.Fields = children
		field.ItemLabel = stringExtension(schema.Extensions, ExtensionItemLabel)
		if field.ItemLabel == "" {
			field.ItemLabel = items.Title
		}
		field.Default = nil
	case items.Type == "string" && items.Format == "binary":
		field.Type = model.FieldTypeMultiFile
		field.Validation = fileRules(schema)
	case len(items.Enum) > 0:
		field.Type = model.FieldTypeMultiSelect
		field.Options = optionsFromEnum(items)
		if stringExtension(schema.Extensions, ExtensionWidget) == string(model.FieldTypeCheckbox) {
			field.Type = model.FieldTypeCheckbox
		}
	default:
		b.skip(path, "array of "+items.Type+" without enum")
		return field, false, nil
	}
	return field, true, nil
}

func (b *Builder) skip(path, reason string) {
	b.logger.Warn("openapi builder skipped property", "path", path, "reason", reason)
}

func primitiveType(schema Schema) model.FieldType {
	switch {
	case len(schema.Enum) > 0:
		return model.FieldTypeSelect
	case schema.Type == "integer" || schema.Type == "number":
		return model.FieldTypeNumber
	case schema.Type == "boolean":
		return model.FieldTypeCheckbox
	case schema.Format == "email":
		return model.FieldTypeEmail
	case schema.Format == "password":
		return model.FieldTypePassword
	case schema.Format == "binary":
		return model.FieldTypeMultiFile
	default:
		return model.FieldTypeText
	}
}

func optionsFromEnum(schema Schema) []model.Option {
	if len(schema.Enum) == 0 {
		return nil
	}
	labels := stringSliceExtension(schema.Extensions, ExtensionOptionLabels)
	options := make([]model.Option, 0, len(schema.Enum))
	for i, value := range schema.Enum {
		label := fmt.Sprint(value)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		options = append(options, model.Option{Label: label, Value: value})
	}
	return options
}

func validationFromSchema(schema Schema) *model.ValidationRules {
	rules := &model.ValidationRules{
		MinLength: schema.MinLength,
		MaxLength: schema.MaxLength,
		Min:       schema.Minimum,
		Max:       schema.Maximum,
		Pattern:   schema.Pattern,
	}
	if schema.Format == "binary" {
		merged := fileRules(schema)
		rules.MaxFiles = intPtr(1)
		rules.MaxFileSize = merged.MaxFileSize
		rules.AcceptedFileTypes = merged.AcceptedFileTypes
	}
	if rules.MinLength == nil && rules.MaxLength == nil && rules.Min == nil && rules.Max == nil &&
		rules.Pattern == "" && rules.MaxFiles == nil {
		return nil
	}
	return rules
}

func fileRules(schema Schema) *model.ValidationRules {
	rules := &model.ValidationRules{MaxFiles: schema.MaxItems}
	ext := schema.Extensions
	if schema.Items != nil && len(ext) == 0 {
		ext = schema.Items.Extensions
	}
	rules.AcceptedFileTypes = stringSliceExtension(ext, ExtensionAccept)
	if size, ok := numberExtension(ext, ExtensionMaxFileSize); ok {
		v := int64(size)
		rules.MaxFileSize = &v
	}
	return rules
}

// orderedProperties sorts by ExtensionOrder first, then by name.
func orderedProperties(props map[string]Schema) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := numberExtension(props[names[i]].Extensions, ExtensionOrder)
		oj, jok := numberExtension(props[names[j]].Extensions, ExtensionOrder)
		switch {
		case iok && jok && oi != oj:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

func stringExtension(ext map[string]any, key string) string {
	value, _ := ext[key].(string)
	return strings.TrimSpace(value)
}

func stringSliceExtension(ext map[string]any, key string) []string {
	raw, ok := ext[key].([]any)
	if !ok {
		if typed, ok := ext[key].([]string); ok {
			return append([]string(nil), typed...)
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func numberExtension(ext map[string]any, key string) (float64, bool) {
	switch typed := ext[key].(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func intPtr(v int) *int { return &v }
