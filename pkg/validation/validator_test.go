package validation_test

import (
	"testing"

	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/validation"
)

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCheck_RuleOrder(t *testing.T) {
	v := validation.New()
	field := model.FieldDefinition{
		Key:      "code",
		Type:     model.FieldTypeText,
		Required: true,
		Validation: &model.ValidationRules{
			MinLength: intPtr(3),
			Pattern:   `^[A-Z]+$`,
		},
	}

	cases := []struct {
		value any
		rule  string
	}{
		{"", model.RuleRequired},
		{"ab", model.RuleMinLength},
		{"abc", model.RulePattern},
		{"ABC", ""},
	}
	for _, tc := range cases {
		failure, ok := v.Check(field, tc.value)
		if tc.rule == "" {
			if !ok {
				t.Fatalf("%q: expected valid, got %s", tc.value, failure.Rule)
			}
			continue
		}
		if ok || failure.Rule != tc.rule {
			t.Fatalf("%q: rule = %q, want %q", tc.value, failure.Rule, tc.rule)
		}
	}
}

func TestCheck_EmptyOptionalSkipsRules(t *testing.T) {
	v := validation.New()
	fields := []model.FieldDefinition{
		{Key: "a", Type: model.FieldTypeText, Validation: &model.ValidationRules{MinLength: intPtr(5), Pattern: `^x$`}},
		{Key: "b", Type: model.FieldTypeEmail},
		{Key: "c", Type: model.FieldTypeNumber, Validation: &model.ValidationRules{Min: floatPtr(10)}},
		{Key: "d", Type: model.FieldTypeMultiFile, Validation: &model.ValidationRules{AcceptedFileTypes: []string{".pdf"}}},
		{Key: "e", Type: model.FieldTypeCheckbox},
	}
	empties := []any{"", "", nil, []any{}, false}
	for i, field := range fields {
		if msg := v.Validate("en", field, empties[i]); msg != "" {
			t.Fatalf("field %s: expected no error, got %q", field.Key, msg)
		}
	}
}

func TestCheck_LengthCountsRunes(t *testing.T) {
	v := validation.New()
	field := model.FieldDefinition{Key: "name", Type: model.FieldTypeText, Validation: &model.ValidationRules{MaxLength: intPtr(3)}}
	if _, ok := v.Check(field, "علي"); !ok {
		t.Fatal("three arabic letters should satisfy maxLength 3")
	}
}

func TestCheck_Numbers(t *testing.T) {
	v := validation.New()
	field := model.FieldDefinition{Key: "score", Type: model.FieldTypeNumber, Validation: &model.ValidationRules{Min: floatPtr(0), Max: floatPtr(100)}}

	if f, _ := v.Check(field, "abc"); f.Rule != model.RuleNumber {
		t.Fatalf("expected number rule, got %q", f.Rule)
	}
	if f, _ := v.Check(field, -1.0); f.Rule != model.RuleMin {
		t.Fatalf("expected min rule, got %q", f.Rule)
	}
	if f, _ := v.Check(field, "101"); f.Rule != model.RuleMax {
		t.Fatalf("expected max rule, got %q", f.Rule)
	}
	if _, ok := v.Check(field, 42); !ok {
		t.Fatal("42 should be valid")
	}

	digits := model.FieldDefinition{Key: "students", Type: model.FieldTypeNumber, Validation: &model.ValidationRules{Pattern: `^[0-9]+$`}}
	if f, ok := v.Check(digits, 1000000.0); !ok {
		t.Fatalf("1000000 should match digits pattern, got %q", f.Rule)
	}
	if f, _ := v.Check(digits, 2.5); f.Rule != model.RulePattern {
		t.Fatalf("expected pattern rule for 2.5, got %q", f.Rule)
	}
}

func TestCheck_UnknownTypePasses(t *testing.T) {
	v := validation.New()
	field := model.FieldDefinition{Key: "stars", Type: "rating", Required: true}
	if f, ok := v.Check(field, nil); !ok {
		t.Fatalf("unknown type should pass, got %q", f.Rule)
	}
}

func TestCheck_EmailAndOptions(t *testing.T) {
	v := validation.New()
	email := model.FieldDefinition{Key: "email", Type: model.FieldTypeEmail}
	if f, _ := v.Check(email, "not-an-email"); f.Rule != model.RuleEmail {
		t.Fatalf("expected email rule, got %q", f.Rule)
	}
	if _, ok := v.Check(email, "teacher@example.com"); !ok {
		t.Fatal("valid email rejected")
	}

	multi := model.FieldDefinition{
		Key:     "subjects",
		Type:    model.FieldTypeMultiSelect,
		Options: []model.Option{{Label: "Math", Value: "math"}, {Label: "Physics", Value: "physics"}},
	}
	if _, ok := v.Check(multi, []any{"math"}); !ok {
		t.Fatal("known option rejected")
	}
	if f, _ := v.Check(multi, []any{"math", "history"}); f.Rule != model.RuleOption {
		t.Fatalf("expected option rule, got %q", f.Rule)
	}
}

func TestCheck_Files(t *testing.T) {
	v := validation.New()
	field := model.FieldDefinition{
		Key:  "attachments",
		Type: model.FieldTypeMultiFile,
		Validation: &model.ValidationRules{
			MaxFiles:          intPtr(2),
			MaxFileSize:       int64Ptr(1024),
			AcceptedFileTypes: []string{".pdf", "image/*"},
		},
	}

	cases := []struct {
		name  string
		files []any
		rule  string
	}{
		{"ok", []any{model.FileValue{Name: "a.PDF", Size: 10}, model.FileValue{Name: "b.bin", Size: 10, ContentType: "image/png"}}, ""},
		{"too many", []any{model.FileValue{Name: "a.pdf"}, model.FileValue{Name: "b.pdf"}, model.FileValue{Name: "c.pdf"}}, model.RuleMaxFiles},
		{"too big", []any{model.FileValue{Name: "a.pdf", Size: 2048}}, model.RuleMaxFileSize},
		{"wrong type", []any{map[string]any{"name": "a.exe", "size": 12.0}}, model.RuleAcceptedFileTypes},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			failure, ok := v.Check(field, tc.files)
			if tc.rule == "" {
				if !ok {
					t.Fatalf("expected valid, got %s", failure.Rule)
				}
				return
			}
			if failure.Rule != tc.rule {
				t.Fatalf("rule = %q, want %q", failure.Rule, tc.rule)
			}
		})
	}
}

func TestCheck_RequiredCheckbox(t *testing.T) {
	v := validation.New()
	terms := model.FieldDefinition{Key: "terms", Type: model.FieldTypeCheckbox, Required: true}
	if f, _ := v.Check(terms, false); f.Rule != model.RuleRequired {
		t.Fatalf("unchecked required checkbox should fail, got %q", f.Rule)
	}
	if _, ok := v.Check(terms, true); !ok {
		t.Fatal("checked box should pass")
	}
}

func TestMessage_OverrideThenTranslation(t *testing.T) {
	tr := i18n.MustNew()
	v := validation.New(validation.WithTranslator(tr))
	field := model.FieldDefinition{
		Key:        "name",
		Type:       model.FieldTypeText,
		Required:   true,
		Validation: &model.ValidationRules{MinLength: intPtr(2), Messages: map[string]string{model.RuleRequired: "Name please"}},
	}

	if got := v.Validate("en", field, ""); got != "Name please" {
		t.Fatalf("override message = %q", got)
	}
	if got := v.Validate("en", field, "A"); got != "Must be at least 2 characters" {
		t.Fatalf("english default = %q", got)
	}
	if got := v.Validate("ar", field, "A"); got != "يجب ألا يقل عن 2 حرفًا" {
		t.Fatalf("arabic default = %q", got)
	}
}

func TestMessage_FallbackWithoutTranslator(t *testing.T) {
	v := validation.New()
	field := model.FieldDefinition{Key: "age", Type: model.FieldTypeNumber, Validation: &model.ValidationRules{Max: floatPtr(9.5)}}
	if got := v.Validate("en", field, 10); got != "Must be at most 9.5" {
		t.Fatalf("fallback message = %q", got)
	}
}
