package model

// FieldType enumerates the input kinds a FieldDefinition can declare.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypePassword    FieldType = "password"
	FieldTypeNumber      FieldType = "number"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeMultiFile   FieldType = "multi-file"
	FieldTypeGroup       FieldType = "group"
	FieldTypeArray       FieldType = "array"
)

// Canonical rule identifiers. They double as keys for ValidationRules.Messages
// and as suffixes for localized default messages.
const (
	RuleRequired          = "required"
	RuleNumber            = "number"
	RuleMinLength         = "minLength"
	RuleMaxLength         = "maxLength"
	RuleMin               = "min"
	RuleMax               = "max"
	RulePattern           = "pattern"
	RuleEmail             = "email"
	RuleOption            = "option"
	RuleMaxFiles          = "maxFiles"
	RuleMaxFileSize       = "maxFileSize"
	RuleAcceptedFileTypes = "acceptedFileTypes"
)

// Option is a single choice for select, multiselect, radio and checkbox group
// fields. Order is preserved when rendering.
type Option struct {
	Label    string `json:"label" yaml:"label"`
	LabelKey string `json:"labelKey,omitempty" yaml:"labelKey,omitempty"`
	Value    any    `json:"value" yaml:"value"`
}

// ValidationRules holds the optional constraints attached to a field. Nil
// pointers mean "no constraint". Messages overrides the default message per
// rule identifier (see the Rule* constants).
type ValidationRules struct {
	MinLength         *int              `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength         *int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min               *float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max               *float64          `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern           string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MaxFiles          *int              `json:"maxFiles,omitempty" yaml:"maxFiles,omitempty"`
	MaxFileSize       *int64            `json:"maxFileSize,omitempty" yaml:"maxFileSize,omitempty"`
	AcceptedFileTypes []string          `json:"acceptedFileTypes,omitempty" yaml:"acceptedFileTypes,omitempty"`
	Messages          map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Message returns the caller supplied override for rule, if any.
func (r *ValidationRules) Message(rule string) string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[rule]
}

// FieldDefinition describes one input. Group and array fields carry their
// children in Fields; groups flatten their children into the parent result
// while arrays produce one child object per repetition.
type FieldDefinition struct {
	Key            string            `json:"key" yaml:"key"`
	Type           FieldType         `json:"type" yaml:"type"`
	Label          string            `json:"label,omitempty" yaml:"label,omitempty"`
	LabelKey       string            `json:"labelKey,omitempty" yaml:"labelKey,omitempty"`
	Placeholder    string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	PlaceholderKey string            `json:"placeholderKey,omitempty" yaml:"placeholderKey,omitempty"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	Required       bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Default        any               `json:"default,omitempty" yaml:"default,omitempty"`
	Options        []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Validation     *ValidationRules  `json:"validation,omitempty" yaml:"validation,omitempty"`
	Fields         []FieldDefinition `json:"fields,omitempty" yaml:"fields,omitempty"`
	ItemLabel      string            `json:"itemLabel,omitempty" yaml:"itemLabel,omitempty"`
}

// FormDefinition is the declarative input of the form engine.
type FormDefinition struct {
	ID            string            `json:"id" yaml:"id"`
	Title         string            `json:"title,omitempty" yaml:"title,omitempty"`
	TitleKey      string            `json:"titleKey,omitempty" yaml:"titleKey,omitempty"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Action        string            `json:"action,omitempty" yaml:"action,omitempty"`
	Method        string            `json:"method,omitempty" yaml:"method,omitempty"`
	Fields        []FieldDefinition `json:"fields" yaml:"fields"`
	SubmitText    string            `json:"submitText,omitempty" yaml:"submitText,omitempty"`
	SubmitTextKey string            `json:"submitTextKey,omitempty" yaml:"submitTextKey,omitempty"`
	ResetText     string            `json:"resetText,omitempty" yaml:"resetText,omitempty"`
	ResetTextKey  string            `json:"resetTextKey,omitempty" yaml:"resetTextKey,omitempty"`
	Loading       bool              `json:"loading,omitempty" yaml:"loading,omitempty"`
}

// FileValue is the value element stored for multi-file fields.
type FileValue struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// IsKnown reports whether the engine has a handler for the type.
func (t FieldType) IsKnown() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeNumber,
		FieldTypeTextarea, FieldTypeSelect, FieldTypeMultiSelect, FieldTypeRadio,
		FieldTypeCheckbox, FieldTypeMultiFile, FieldTypeGroup, FieldTypeArray:
		return true
	default:
		return false
	}
}

// IsComposite reports whether the type nests child definitions.
func (t FieldType) IsComposite() bool {
	return t == FieldTypeGroup || t == FieldTypeArray
}

// IsTextual reports whether the value is a free-form string.
func (t FieldType) IsTextual() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeTextarea:
		return true
	default:
		return false
	}
}

// IsMultiValued reports whether the field stores a slice.
func (f FieldDefinition) IsMultiValued() bool {
	switch f.Type {
	case FieldTypeMultiSelect, FieldTypeMultiFile, FieldTypeArray:
		return true
	case FieldTypeCheckbox:
		return len(f.Options) > 0
	default:
		return false
	}
}

// EmptyValue returns the type-appropriate value of an untouched field.
func EmptyValue(field FieldDefinition) any {
	switch {
	case field.IsMultiValued():
		return []any{}
	case field.Type == FieldTypeCheckbox:
		return false
	case field.Type == FieldTypeNumber:
		return nil
	default:
		return ""
	}
}

// InitialValue returns the configured default or the empty value. Slice
// defaults are copied so callers never share backing arrays with the
// definition.
func InitialValue(field FieldDefinition) any {
	if field.Default == nil {
		return EmptyValue(field)
	}
	switch typed := field.Default.(type) {
	case []any:
		return append([]any{}, typed...)
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out
	default:
		return typed
	}
}
