package validation

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
)

// Failure describes the first rule a value broke. Params feed message
// templates (Min, Max, Name).
type Failure struct {
	Rule   string
	Params map[string]any
}

// Option configures a Validator.
type Option func(*Validator)

// WithTranslator resolves default messages through t.
func WithTranslator(t i18n.Translator) Option {
	return func(v *Validator) {
		v.translator = t
	}
}

// Validator checks field values. It is safe for concurrent use; compiled
// patterns are cached per instance.
type Validator struct {
	translator i18n.Translator
	validate   *playground.Validate

	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{
		validate: playground.New(),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate returns the error message for value, or "" when it is valid.
func (v *Validator) Validate(locale string, field model.FieldDefinition, value any) string {
	failure, ok := v.Check(field, value)
	if ok {
		return ""
	}
	return v.Message(locale, field, failure)
}

// Check runs the rule chain and reports the first failure. Fields of unknown
// type cannot be filled and always pass.
func (v *Validator) Check(field model.FieldDefinition, value any) (Failure, bool) {
	if !field.Type.IsKnown() {
		return Failure{}, true
	}
	if IsEmpty(field, value) {
		if field.Required {
			return Failure{Rule: model.RuleRequired}, false
		}
		return Failure{}, true
	}

	// composites only carry the required check here; children are
	// validated by the engine
	if field.Type.IsComposite() {
		return Failure{}, true
	}

	rules := field.Validation
	if rules == nil {
		rules = &model.ValidationRules{}
	}

	var number float64
	isNumber := field.Type == model.FieldTypeNumber
	if isNumber {
		n, ok := ToFloat(value)
		if !ok {
			return Failure{Rule: model.RuleNumber}, false
		}
		number = n
	}

	if text, ok := value.(string); ok && !isNumber {
		length := utf8.RuneCountInString(text)
		if rules.MinLength != nil && length < *rules.MinLength {
			return Failure{Rule: model.RuleMinLength, Params: map[string]any{"Min": *rules.MinLength}}, false
		}
		if rules.MaxLength != nil && length > *rules.MaxLength {
			return Failure{Rule: model.RuleMaxLength, Params: map[string]any{"Max": *rules.MaxLength}}, false
		}
	}

	if isNumber {
		if rules.Min != nil && number < *rules.Min {
			return Failure{Rule: model.RuleMin, Params: map[string]any{"Min": formatNumber(*rules.Min)}}, false
		}
		if rules.Max != nil && number > *rules.Max {
			return Failure{Rule: model.RuleMax, Params: map[string]any{"Max": formatNumber(*rules.Max)}}, false
		}
	}

	if rules.Pattern != "" {
		if text, ok := patternSubject(value); ok {
			re, err := v.pattern(rules.Pattern)
			if err != nil || !re.MatchString(text) {
				return Failure{Rule: model.RulePattern}, false
			}
		}
	}

	if field.Type == model.FieldTypeEmail {
		if err := v.validate.Var(fmt.Sprint(value), "email"); err != nil {
			return Failure{Rule: model.RuleEmail}, false
		}
	}

	if len(field.Options) > 0 && !optionsSatisfied(field, value) {
		return Failure{Rule: model.RuleOption}, false
	}

	if field.Type == model.FieldTypeMultiFile {
		if failure, ok := checkFiles(rules, value); !ok {
			return failure, false
		}
	}

	return Failure{}, true
}

// Message resolves the override for the failed rule, then the localized
// default, then an English fallback.
func (v *Validator) Message(locale string, field model.FieldDefinition, failure Failure) string {
	if failure.Rule == "" {
		return ""
	}
	if msg := field.Validation.Message(failure.Rule); msg != "" {
		return msg
	}
	fallback := defaultMessage(failure)
	return i18n.Lookup(v.translator, locale, "validation."+failure.Rule, fallback, failure.Params)
}

func (v *Validator) pattern(expr string) (*regexp.Regexp, error) {
	v.mu.RLock()
	re, ok := v.patterns[expr]
	v.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.patterns[expr] = re
	v.mu.Unlock()
	return re, nil
}

// IsEmpty applies the required-check notion of emptiness: nil, "", an empty
// slice, or an unchecked single checkbox.
func IsEmpty(field model.FieldDefinition, value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	case []model.FileValue:
		return len(typed) == 0
	case bool:
		return field.Type == model.FieldTypeCheckbox && !field.IsMultiValued() && !typed
	default:
		return false
	}
}

// ToFloat converts numeric values and numeric strings.
func ToFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func patternSubject(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case float64:
		return formatNumber(typed), true
	case int, int64:
		return fmt.Sprint(typed), true
	default:
		return "", false
	}
}

func optionsSatisfied(field model.FieldDefinition, value any) bool {
	allowed := make(map[string]struct{}, len(field.Options))
	for _, opt := range field.Options {
		allowed[fmt.Sprint(opt.Value)] = struct{}{}
	}
	contains := func(v any) bool {
		_, ok := allowed[fmt.Sprint(v)]
		return ok
	}

	switch typed := value.(type) {
	case []any:
		for _, item := range typed {
			if !contains(item) {
				return false
			}
		}
		return true
	case []string:
		for _, item := range typed {
			if !contains(item) {
				return false
			}
		}
		return true
	default:
		return contains(typed)
	}
}

func checkFiles(rules *model.ValidationRules, value any) (Failure, bool) {
	files := Files(value)
	if rules.MaxFiles != nil && len(files) > *rules.MaxFiles {
		return Failure{Rule: model.RuleMaxFiles, Params: map[string]any{"Max": *rules.MaxFiles}}, false
	}
	if rules.MaxFileSize != nil {
		for _, file := range files {
			if file.Size > *rules.MaxFileSize {
				return Failure{Rule: model.RuleMaxFileSize, Params: map[string]any{"Max": *rules.MaxFileSize, "Name": file.Name}}, false
			}
		}
	}
	if len(rules.AcceptedFileTypes) > 0 {
		for _, file := range files {
			if !acceptedType(file, rules.AcceptedFileTypes) {
				return Failure{Rule: model.RuleAcceptedFileTypes, Params: map[string]any{"Name": file.Name}}, false
			}
		}
	}
	return Failure{}, true
}

// Files normalizes a multi-file value into FileValue entries. Maps decoded
// from JSON are accepted.
func Files(value any) []model.FileValue {
	var items []any
	switch typed := value.(type) {
	case []model.FileValue:
		return typed
	case []any:
		items = typed
	default:
		return nil
	}

	out := make([]model.FileValue, 0, len(items))
	for _, item := range items {
		switch file := item.(type) {
		case model.FileValue:
			out = append(out, file)
		case *model.FileValue:
			if file != nil {
				out = append(out, *file)
			}
		case map[string]any:
			fv := model.FileValue{}
			fv.Name, _ = file["name"].(string)
			fv.ContentType, _ = file["contentType"].(string)
			if size, ok := ToFloat(file["size"]); ok {
				fv.Size = int64(size)
			}
			out = append(out, fv)
		case string:
			out = append(out, model.FileValue{Name: file})
		}
	}
	return out
}

func acceptedType(file model.FileValue, accepted []string) bool {
	ext := strings.ToLower(path.Ext(file.Name))
	contentType := strings.ToLower(strings.TrimSpace(file.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	for _, raw := range accepted {
		candidate := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case candidate == "":
			continue
		case strings.HasPrefix(candidate, "."):
			if ext == candidate {
				return true
			}
		case strings.HasSuffix(candidate, "/*"):
			if contentType != "" && strings.HasPrefix(contentType, strings.TrimSuffix(candidate, "*")) {
				return true
			}
		default:
			if contentType == candidate {
				return true
			}
		}
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func defaultMessage(failure Failure) string {
	p := failure.Params
	switch failure.Rule {
	case model.RuleRequired:
		return "This field is required"
	case model.RuleNumber:
		return "Must be a number"
	case model.RuleMinLength:
		return fmt.Sprintf("Must be at least %v characters", p["Min"])
	case model.RuleMaxLength:
		return fmt.Sprintf("Must be at most %v characters", p["Max"])
	case model.RuleMin:
		return fmt.Sprintf("Must be at least %v", p["Min"])
	case model.RuleMax:
		return fmt.Sprintf("Must be at most %v", p["Max"])
	case model.RulePattern:
		return "Invalid format"
	case model.RuleEmail:
		return "Must be a valid email address"
	case model.RuleOption:
		return "Select one of the available options"
	case model.RuleMaxFiles:
		return fmt.Sprintf("Upload at most %v files", p["Max"])
	case model.RuleMaxFileSize:
		return fmt.Sprintf("%v exceeds the maximum size of %v bytes", p["Name"], p["Max"])
	case model.RuleAcceptedFileTypes:
		return fmt.Sprintf("%v is not an accepted file type", p["Name"])
	default:
		return "Invalid value"
	}
}
