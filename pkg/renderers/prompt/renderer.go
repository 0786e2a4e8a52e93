package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/render"
)

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	statFile          FileStatFunc
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a prompt renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		statFile:     statFile,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil, nil, nil)
	}
	if _, err := ParseOutputFormat(string(r.outputFormat)); err != nil {
		return nil, err
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "prompt"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render asks every field in definition order, submits the form and returns
// the serialized result.
func (r *Renderer) Render(ctx context.Context, f *form.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("prompt: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("prompt: form is nil")
	}
	if r.driver == nil {
		return nil, errors.New("prompt: prompt driver is nil")
	}

	opts = render.Effective(f, opts)
	def := render.LocalizeDefinition(f.Definition(), opts.Locale, opts.Translator)

	s := &session{ctx: ctx, renderer: r, form: f, options: opts}
	if def.Title != "" {
		s.info(def.Title)
	}
	for _, field := range def.Fields {
		if err := s.promptField(field, ""); err != nil {
			return nil, err
		}
	}

	values, err := f.Submit(ctx)
	if err != nil {
		for _, path := range f.ErrorPaths() {
			s.fail(path, f.Error(path))
		}
		for _, message := range f.FormErrors() {
			s.fail("", message)
		}
		return nil, fmt.Errorf("prompt: submit: %w", err)
	}

	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("prompt: submit transformer: %w", err)
		}
	}
	return serialize(r.outputFormat, values)
}

type session struct {
	ctx      context.Context
	renderer *Renderer
	form     *form.Form
	options  render.RenderOptions
}

func (s *session) t(key, fallback string, data map[string]any) string {
	return i18n.Lookup(s.options.Translator, s.options.Locale, key, fallback, data)
}

func (s *session) info(msg string) {
	_ = s.renderer.driver.Info(s.ctx, s.renderer.theme.InfoPrefix+msg)
}

func (s *session) fail(label, msg string) {
	if label != "" {
		msg = label + ": " + msg
	}
	_ = s.renderer.driver.Info(s.ctx, s.renderer.theme.ErrorPrefix+msg)
}

func (s *session) promptField(field model.FieldDefinition, prefix string) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	path := prefix + field.Key

	switch {
	case !field.Type.IsKnown():
		s.fail("", s.t("form.unknownField", "Unknown field type: "+string(field.Type), map[string]any{"Type": string(field.Type)}))
		return nil
	case field.Type == model.FieldTypeGroup:
		if field.Label != "" {
			s.info(field.Label)
		}
		for _, child := range field.Fields {
			if err := s.promptField(child, prefix); err != nil {
				return err
			}
		}
		return nil
	case field.Type == model.FieldTypeArray:
		return s.promptArray(field, path)
	default:
		return s.promptLeaf(field, path)
	}
}

// promptLeaf repeats the question until the engine accepts the answer.
func (s *session) promptLeaf(field model.FieldDefinition, path string) error {
	for {
		answer, err := s.ask(field, path)
		if errors.Is(err, errInvalidAnswer) {
			s.fail(field.Label, strings.TrimPrefix(err.Error(), errInvalidAnswer.Error()+": "))
			continue
		}
		if err != nil {
			return err
		}
		if err := s.form.SetFieldValue(path, answer); err != nil {
			return fmt.Errorf("prompt: set %s: %w", path, err)
		}
		if s.form.ValidateField(path) {
			return nil
		}
		s.fail(field.Label, s.form.Error(path))
	}
}

func (s *session) promptArray(field model.FieldDefinition, path string) error {
	label := strings.TrimSpace(field.ItemLabel)
	if label == "" {
		label = field.Label
	}
	if field.Label != "" {
		s.info(field.Label)
	}

	for i := 0; i < s.form.ItemCount(path); i++ {
		if err := s.promptItem(field, path, label, i); err != nil {
			return err
		}
	}

	for {
		key, fallback := "prompt.addAnother", "Add another "+label+"?"
		count := s.form.ItemCount(path)
		if count == 0 {
			key, fallback = "prompt.addFirst", "Add "+label+"?"
		}
		more, err := s.renderer.driver.Confirm(s.ctx, ConfirmConfig{
			Message: s.t(key, fallback, map[string]any{"Label": label}),
			Default: field.Required && count == 0,
		})
		if err != nil {
			return err
		}
		if !more {
			if s.form.ValidateField(path) {
				return nil
			}
			s.fail(field.Label, s.form.Error(path))
			continue
		}

		index, err := s.form.AddItem(path)
		if err != nil {
			return fmt.Errorf("prompt: add %s: %w", path, err)
		}
		if err := s.promptItem(field, path, label, index); err != nil {
			return err
		}
	}
}

func (s *session) promptItem(field model.FieldDefinition, path, label string, index int) error {
	s.info(s.t("prompt.item", fmt.Sprintf("%s %d", label, index+1), map[string]any{
		"Label":  label,
		"Number": index + 1,
	}))
	prefix := path + "." + strconv.Itoa(index) + "."
	for _, child := range field.Fields {
		if err := s.promptField(child, prefix); err != nil {
			return err
		}
	}
	return nil
}

// ask returns the raw answer for a leaf. Coercion is left to the form.
func (s *session) ask(field model.FieldDefinition, path string) (any, error) {
	driver := s.renderer.driver
	current, _ := s.form.Value(path)
	message := field.Label
	if field.Required {
		message += " *"
	}
	help := field.Description
	if help == "" {
		help = field.Placeholder
	}

	switch field.Type {
	case model.FieldTypePassword:
		return driver.Password(s.ctx, InputConfig{Message: message, Help: help})
	case model.FieldTypeTextarea:
		return driver.TextArea(s.ctx, TextAreaConfig{Message: message, Default: stringValue(current), Help: help})
	case model.FieldTypeCheckbox:
		if !field.IsMultiValued() {
			checked, _ := current.(bool)
			return driver.Confirm(s.ctx, ConfirmConfig{Message: message, Default: checked, Help: help})
		}
		return s.askMany(field, message, help, current)
	case model.FieldTypeMultiSelect:
		return s.askMany(field, message, help, current)
	case model.FieldTypeSelect, model.FieldTypeRadio:
		return s.askOne(field, message, help, current)
	case model.FieldTypeMultiFile:
		if help == "" {
			help = s.t("prompt.files", "Comma separated file paths", nil)
		}
		raw, err := driver.Input(s.ctx, InputConfig{Message: message, Default: strings.Join(fileNames(current), ", "), Help: help})
		if err != nil {
			return nil, err
		}
		return s.files(raw)
	default:
		return driver.Input(s.ctx, InputConfig{Message: message, Default: stringValue(current), Help: help})
	}
}

func (s *session) askOne(field model.FieldDefinition, message, help string, current any) (any, error) {
	labels := optionLabels(field.Options)
	offset := 0
	if !field.Required {
		labels = append([]string{s.t("prompt.none", "(none)", nil)}, labels...)
		offset = 1
	}
	defaultIdx := -1
	for i, option := range field.Options {
		if current != nil && stringValue(option.Value) == stringValue(current) && stringValue(current) != "" {
			defaultIdx = i + offset
		}
	}

	idx, err := s.renderer.driver.Select(s.ctx, SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: defaultIdx,
		Help:         help,
	})
	if err != nil {
		return nil, err
	}
	idx -= offset
	if idx < 0 || idx >= len(field.Options) {
		return "", nil
	}
	return field.Options[idx].Value, nil
}

func (s *session) askMany(field model.FieldDefinition, message, help string, current any) (any, error) {
	chosen := make(map[string]struct{})
	if items, ok := current.([]any); ok {
		for _, item := range items {
			chosen[stringValue(item)] = struct{}{}
		}
	}
	var defaults []int
	for i, option := range field.Options {
		if _, ok := chosen[stringValue(option.Value)]; ok {
			defaults = append(defaults, i)
		}
	}

	indices, err := s.renderer.driver.MultiSelect(s.ctx, SelectConfig{
		Message:  message,
		Options:  optionLabels(field.Options),
		Defaults: defaults,
		Help:     help,
	})
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(field.Options) {
			values = append(values, field.Options[idx].Value)
		}
	}
	return values, nil
}

func (s *session) files(raw string) (any, error) {
	files := []model.FileValue{}
	for _, part := range strings.Split(raw, ",") {
		path := strings.TrimSpace(part)
		if path == "" {
			continue
		}
		file, err := s.renderer.statFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidAnswer, err)
		}
		files = append(files, file)
	}
	return files, nil
}

func optionLabels(options []model.Option) []string {
	labels := make([]string, len(options))
	for i, option := range options {
		labels[i] = option.Label
		if labels[i] == "" {
			labels[i] = stringValue(option.Value)
		}
	}
	return labels
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case model.FileValue:
		return typed.Name
	default:
		return fmt.Sprint(typed)
	}
}

func fileNames(v any) []string {
	items, _ := v.([]any)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, stringValue(item))
	}
	return names
}
