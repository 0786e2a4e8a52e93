// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"testing"

	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/model"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }

// QuizForm returns a definition exercising every field type: a text title
// with length rules, a number with bounds, a select, a required checkbox, a
// group and an array of questions.
func QuizForm() model.FormDefinition {
	return model.FormDefinition{
		ID:       "quiz",
		Title:    "New quiz",
		TitleKey: "quiz.title",
		Action:   "/quizzes",
		Method:   "post",
		Fields: []model.FieldDefinition{
			{
				Key:         "name",
				Type:        model.FieldTypeText,
				Label:       "Name",
				Placeholder: "Quiz name",
				Required:    true,
				Validation:  &model.ValidationRules{MinLength: intPtr(3), MaxLength: intPtr(40)},
			},
			{Key: "desc", Type: model.FieldTypeTextarea, Label: "Description"},
			{
				Key:        "duration",
				Type:       model.FieldTypeNumber,
				Label:      "Duration (minutes)",
				Validation: &model.ValidationRules{Min: floatPtr(1), Max: floatPtr(180)},
			},
			{
				Key:   "level",
				Type:  model.FieldTypeSelect,
				Label: "Level",
				Options: []model.Option{
					{Label: "Beginner", Value: "beginner"},
					{Label: "Advanced", Value: "advanced"},
				},
			},
			{Key: "published", Type: model.FieldTypeCheckbox, Label: "Published"},
			{
				Key:  "meta",
				Type: model.FieldTypeGroup,
				Fields: []model.FieldDefinition{
					{Key: "subject", Type: model.FieldTypeText, Label: "Subject"},
					{Key: "grade", Type: model.FieldTypeNumber, Label: "Grade"},
				},
			},
			{
				Key:       "questions",
				Type:      model.FieldTypeArray,
				Label:     "Questions",
				ItemLabel: "Question",
				Fields: []model.FieldDefinition{
					{Key: "prompt", Type: model.FieldTypeText, Label: "Prompt", Required: true},
					{Key: "points", Type: model.FieldTypeNumber, Label: "Points"},
				},
			},
			{
				Key:   "attachments",
				Type:  model.FieldTypeMultiFile,
				Label: "Attachments",
				Validation: &model.ValidationRules{
					MaxFiles:          intPtr(2),
					MaxFileSize:       int64Ptr(1 << 20),
					AcceptedFileTypes: []string{".pdf", "image/*"},
				},
			},
		},
	}
}

// MustForm builds a form or fails the test.
func MustForm(t *testing.T, def model.FormDefinition, onSubmit form.SubmitFunc, opts ...form.Option) *form.Form {
	t.Helper()

	f, err := form.New(def, onSubmit, opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	return f
}
