package openapi_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formscreen/internal/openapi/parser"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/openapi"
)

const quizDocument = `
openapi: 3.0.0
info: {title: Quizzes, version: 1.0.0}
paths:
  /quizzes:
    post:
      operationId: createQuiz
      summary: New quiz
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name: {type: string, title: Name, minLength: 3, x-formscreen-order: 1}
                desc: {type: string, x-formscreen-widget: textarea, x-formscreen-order: 2}
                duration: {type: integer, minimum: 1, maximum: 180}
                level:
                  type: string
                  enum: [beginner, advanced]
                  x-formscreen-option-labels: [Beginner, Advanced]
                published: {type: boolean}
                contact: {type: string, format: email}
                secret: {type: string, format: password}
                meta:
                  type: object
                  properties:
                    subject: {type: string}
                questions:
                  type: array
                  x-formscreen-item-label: Question
                  items:
                    type: object
                    required: [prompt]
                    properties:
                      prompt: {type: string}
                      points: {type: number}
                tags:
                  type: array
                  items: {type: string, enum: [a, b]}
                attachments:
                  type: array
                  maxItems: 2
                  x-formscreen-accept: [".pdf"]
                  items: {type: string, format: binary}
                notes:
                  type: array
                  items: {type: string}
      responses:
        "201": {description: created}
`

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func parseOperation(t *testing.T, document, id string) openapi.Operation {
	t.Helper()
	doc := openapi.MustNewDocument(openapi.SourceFromFile("inline.yaml"), []byte(document))
	ops, err := parser.New(openapi.NewParserOptions()).Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	op, ok := ops[id]
	if !ok {
		t.Fatalf("operation %q not found", id)
	}
	return op
}

func TestBuildMapsRequestBody(t *testing.T) {
	var logs bytes.Buffer
	builder := openapi.NewBuilder(openapi.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	got, err := builder.Build(parseOperation(t, quizDocument, "createQuiz"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := model.FormDefinition{
		ID:     "createQuiz",
		Title:  "New quiz",
		Action: "/quizzes",
		Method: "post",
		Fields: []model.FieldDefinition{
			{Key: "name", Type: model.FieldTypeText, Label: "Name", Required: true, Validation: &model.ValidationRules{MinLength: intPtr(3)}},
			{Key: "desc", Type: model.FieldTypeTextarea},
			{Key: "attachments", Type: model.FieldTypeMultiFile, Validation: &model.ValidationRules{MaxFiles: intPtr(2), AcceptedFileTypes: []string{".pdf"}}},
			{Key: "contact", Type: model.FieldTypeEmail},
			{Key: "duration", Type: model.FieldTypeNumber, Validation: &model.ValidationRules{Min: floatPtr(1), Max: floatPtr(180)}},
			{Key: "level", Type: model.FieldTypeSelect, Options: []model.Option{{Label: "Beginner", Value: "beginner"}, {Label: "Advanced", Value: "advanced"}}},
			{Key: "meta", Type: model.FieldTypeGroup, Fields: []model.FieldDefinition{{Key: "subject", Type: model.FieldTypeText}}},
			{Key: "published", Type: model.FieldTypeCheckbox},
			{Key: "questions", Type: model.FieldTypeArray, ItemLabel: "Question", Fields: []model.FieldDefinition{
				{Key: "points", Type: model.FieldTypeNumber},
				{Key: "prompt", Type: model.FieldTypeText, Required: true},
			}},
			{Key: "secret", Type: model.FieldTypePassword},
			{Key: "tags", Type: model.FieldTypeMultiSelect, Options: []model.Option{{Label: "a", Value: "a"}, {Label: "b", Value: "b"}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "createQuiz.notes") {
		t.Fatalf("expected skipped property to be logged, got %q", logs.String())
	}
}

func TestBuildErrors(t *testing.T) {
	noBody := openapi.MustNewOperation("listQuizzes", "GET", "/quizzes", openapi.Schema{})
	if _, err := openapi.NewBuilder().Build(noBody); !errors.Is(err, openapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}

	clash := openapi.MustNewOperation("clash", "POST", "/x", openapi.Schema{
		Type: "object",
		Properties: map[string]openapi.Schema{
			"subject": {Type: "string"},
			"meta": {Type: "object", Properties: map[string]openapi.Schema{
				"subject": {Type: "string"},
			}},
		},
	})
	var dup model.DuplicateKeyError
	if _, err := openapi.NewBuilder().Build(clash); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}

	badWidget := openapi.MustNewOperation("bad", "POST", "/x", openapi.Schema{
		Type: "object",
		Properties: map[string]openapi.Schema{
			"flag": {Type: "boolean", Extensions: map[string]any{openapi.ExtensionWidget: "group"}},
		},
	})
	if _, err := openapi.NewBuilder().Build(badWidget); err == nil {
		t.Fatal("expected widget mismatch error")
	}
}

func TestBuildWithFormID(t *testing.T) {
	op := openapi.MustNewOperation("createQuiz", "PUT", "/quizzes/{id}", openapi.Schema{
		Type:       "object",
		Properties: map[string]openapi.Schema{"name": {Type: "string"}},
	})
	got, err := openapi.NewBuilder(openapi.WithFormID("quiz-edit")).Build(op)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.ID != "quiz-edit" || got.Method != "put" {
		t.Fatalf("unexpected definition %+v", got)
	}
}
