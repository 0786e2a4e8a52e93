package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrFormIDMissing   = errors.New("model: form id is required")
	ErrFieldKeyMissing = errors.New("model: field key is required")
	ErrNoChildren      = errors.New("model: composite field requires child fields")
)

// DuplicateKeyError reports two fields that resolve to the same result key
// once groups are flattened into their parent namespace.
type DuplicateKeyError struct {
	Key    string
	First  string
	Second string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("model: duplicate field key %q (%s and %s)", e.Key, e.First, e.Second)
}

// Validate checks structural invariants of the definition. Unknown field types
// are tolerated here; renderers surface them visibly.
func (d FormDefinition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrFormIDMissing
	}
	return ValidateFields(d.Fields)
}

// ValidateFields checks a field list as one result namespace.
func ValidateFields(fields []FieldDefinition) error {
	return validateNamespace(fields, "", make(map[string]string))
}

func validateNamespace(fields []FieldDefinition, prefix string, seen map[string]string) error {
	for idx, field := range fields {
		location := fmt.Sprintf("%sfields[%d]", prefix, idx)
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return fmt.Errorf("%w at %s", ErrFieldKeyMissing, location)
		}
		if strings.ContainsAny(key, ". ") {
			return fmt.Errorf("model: field key %q at %s must not contain dots or spaces", key, location)
		}

		if err := validateRules(field, location); err != nil {
			return err
		}

		switch field.Type {
		case FieldTypeGroup:
			if len(field.Fields) == 0 {
				return fmt.Errorf("%w: group %q", ErrNoChildren, key)
			}
			// group children share the parent namespace
			if err := validateNamespace(field.Fields, location+".", seen); err != nil {
				return err
			}
			continue
		case FieldTypeArray:
			if len(field.Fields) == 0 {
				return fmt.Errorf("%w: array %q", ErrNoChildren, key)
			}
			if err := validateNamespace(field.Fields, location+".", make(map[string]string)); err != nil {
				return err
			}
		}

		if first, exists := seen[key]; exists {
			return DuplicateKeyError{Key: key, First: first, Second: location}
		}
		seen[key] = location
	}
	return nil
}

func validateRules(field FieldDefinition, location string) error {
	rules := field.Validation
	if rules == nil {
		return nil
	}
	if rules.Pattern != "" {
		if _, err := regexp.Compile(rules.Pattern); err != nil {
			return fmt.Errorf("model: invalid pattern for %q at %s: %w", field.Key, location, err)
		}
	}
	if rules.MinLength != nil && rules.MaxLength != nil && *rules.MinLength > *rules.MaxLength {
		return fmt.Errorf("model: minLength exceeds maxLength for %q", field.Key)
	}
	if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
		return fmt.Errorf("model: min exceeds max for %q", field.Key)
	}
	return nil
}

// Flatten expands group fields into their children, returning the fields that
// own a slot in the result object. Array fields are returned as-is; their
// children live in a per-repetition namespace.
func Flatten(fields []FieldDefinition) []FieldDefinition {
	out := make([]FieldDefinition, 0, len(fields))
	for _, field := range fields {
		if field.Type == FieldTypeGroup {
			out = append(out, Flatten(field.Fields)...)
			continue
		}
		out = append(out, field)
	}
	return out
}

// Lookup finds the result-owning field for key inside one namespace.
func Lookup(fields []FieldDefinition, key string) (FieldDefinition, bool) {
	for _, field := range fields {
		if field.Type == FieldTypeGroup {
			if found, ok := Lookup(field.Fields, key); ok {
				return found, true
			}
			continue
		}
		if field.Key == key {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// FindGroup returns the group field keyed by key, searching nested groups.
func FindGroup(fields []FieldDefinition, key string) (FieldDefinition, bool) {
	for _, field := range fields {
		if field.Type != FieldTypeGroup {
			continue
		}
		if field.Key == key {
			return field, true
		}
		if found, ok := FindGroup(field.Fields, key); ok {
			return found, true
		}
	}
	return FieldDefinition{}, false
}
