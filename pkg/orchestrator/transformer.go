package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// Transformer mutates a copy of a form definition before the engine is
// built. Implementations can relabel fields, attach translation keys or
// tighten validation per deployment.
type Transformer interface {
	Transform(ctx context.Context, def *model.FormDefinition) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, def *model.FormDefinition) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, def *model.FormDefinition) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, def)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON
// document. Forms are keyed by id and fields by dotted path, with array
// children addressed through their array key:
//
//	{
//	  "createQuiz": {
//	    "titleKey": "quiz.create.title",
//	    "fields": {
//	      "name": {"labelKey": "quiz.name", "placeholder": "Algebra I"},
//	      "questions.prompt": {"label": "Prompt"}
//	    }
//	  }
//	}
type JSONPresetTransformer struct {
	document map[string]jsonFormPatch
}

type jsonFormPatch struct {
	Title         string                    `json:"title"`
	TitleKey      string                    `json:"titleKey"`
	Description   string                    `json:"description"`
	SubmitText    string                    `json:"submitText"`
	SubmitTextKey string                    `json:"submitTextKey"`
	Fields        map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label          string `json:"label"`
	LabelKey       string `json:"labelKey"`
	Description    string `json:"description"`
	Placeholder    string `json:"placeholder"`
	PlaceholderKey string `json:"placeholderKey"`
	Required       *bool  `json:"required"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document map[string]jsonFormPatch
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the patches registered for def.ID. Forms without a patch
// pass through unchanged; a patch naming a missing field is an error.
func (t *JSONPresetTransformer) Transform(ctx context.Context, def *model.FormDefinition) error {
	if def == nil {
		return errors.New("json preset transformer: definition is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, ok := t.document[def.ID]
	if !ok {
		return nil
	}

	setIfNonEmpty(&def.Title, patch.Title)
	setIfNonEmpty(&def.TitleKey, patch.TitleKey)
	setIfNonEmpty(&def.Description, patch.Description)
	setIfNonEmpty(&def.SubmitText, patch.SubmitText)
	setIfNonEmpty(&def.SubmitTextKey, patch.SubmitTextKey)

	for path, fieldPatch := range patch.Fields {
		field := findFieldByPath(def.Fields, path)
		if field == nil {
			return fmt.Errorf("json preset transformer: form %q field %q not found", def.ID, path)
		}
		applyFieldPatch(field, fieldPatch)
	}
	return nil
}

func applyFieldPatch(field *model.FieldDefinition, patch jsonFieldPatch) {
	setIfNonEmpty(&field.Label, patch.Label)
	setIfNonEmpty(&field.LabelKey, patch.LabelKey)
	setIfNonEmpty(&field.Description, patch.Description)
	setIfNonEmpty(&field.Placeholder, patch.Placeholder)
	setIfNonEmpty(&field.PlaceholderKey, patch.PlaceholderKey)
	if patch.Required != nil {
		field.Required = *patch.Required
	}
}

func setIfNonEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// findFieldByPath resolves "a.b" where a is an array or group and b one of
// its children. Groups may also be skipped since they share the parent
// namespace.
func findFieldByPath(fields []model.FieldDefinition, path string) *model.FieldDefinition {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return walkFieldsByPath(fields, strings.Split(path, "."))
}

func walkFieldsByPath(fields []model.FieldDefinition, segments []string) *model.FieldDefinition {
	if len(segments) == 0 {
		return nil
	}
	head := segments[0]
	for idx := range fields {
		field := &fields[idx]
		if field.Key == head {
			if len(segments) == 1 {
				return field
			}
			return walkFieldsByPath(field.Fields, segments[1:])
		}
		if field.Type == model.FieldTypeGroup {
			if found := walkFieldsByPath(field.Fields, segments); found != nil {
				return found
			}
		}
	}
	return nil
}

func cloneDefinition(def model.FormDefinition) model.FormDefinition {
	out := def
	out.Fields = cloneFields(def.Fields)
	return out
}

func cloneFields(fields []model.FieldDefinition) []model.FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]model.FieldDefinition, len(fields))
	for i, field := range fields {
		out[i] = field
		out[i].Options = append([]model.Option(nil), field.Options...)
		out[i].Fields = cloneFields(field.Fields)
		if field.Validation != nil {
			rules := *field.Validation
			out[i].Validation = &rules
		}
	}
	return out
}
