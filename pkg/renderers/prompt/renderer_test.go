package prompt

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/render"
	"github.com/goliatone/go-formscreen/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	confirmMsgs  []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	s.confirmMsgs = append(s.confirmMsgs, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) errorsWithPrefix(prefix string) []string {
	var out []string
	for _, msg := range s.infoMessages {
		if strings.HasPrefix(msg, prefix) {
			out = append(out, msg)
		}
	}
	return out
}

func stubFiles(path string) (model.FileValue, error) {
	if path == "missing.pdf" {
		return model.FileValue{}, errors.New("missing.pdf: no such file")
	}
	return model.FileValue{Name: path, Size: 10, ContentType: "application/pdf"}, nil
}

func newRenderer(t *testing.T, driver PromptDriver, opts ...Option) *Renderer {
	t.Helper()
	opts = append([]Option{WithPromptDriver(driver), WithFileStat(stubFiles), WithTheme(Theme{ErrorPrefix: "! "})}, opts...)
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderRepeatsUntilValid(t *testing.T) {
	def := model.FormDefinition{
		ID: "quiz",
		Fields: []model.FieldDefinition{
			{Key: "name", Type: model.FieldTypeText, Label: "Name", Required: true, Validation: &model.ValidationRules{MinLength: intPtr(3)}},
			{Key: "desc", Type: model.FieldTypeText, Label: "Description"},
		},
	}
	driver := &stubDriver{inputs: []string{"", "ab", "Algebra", ""}}
	f := testsupport.MustForm(t, def, nil)

	out, err := newRenderer(t, driver).Render(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(`{"desc":"","name":"Algebra"}`, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if got := driver.errorsWithPrefix("! Name: "); len(got) != 2 {
		t.Fatalf("expected two validation messages, got %v", driver.infoMessages)
	}
}

func TestRenderQuizPretty(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Algebra", "abc", "45", "Math", "7", "1+1?", "2", "missing.pdf", "notes.pdf"},
		textAreas: []string{"Linear equations"},
		selectIdx: []int{2},
		confirm:   []bool{true, true, false},
	}
	f := testsupport.MustForm(t, testsupport.QuizForm(), nil)

	out, err := newRenderer(t, driver, WithOutputFormat(OutputFormatPrettyText)).Render(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"attachments[0]=notes.pdf",
		"desc=Linear equations",
		"duration=45",
		"grade=7",
		"level=advanced",
		"name=Algebra",
		"published=true",
		"questions[0].points=2",
		"questions[0].prompt=1+1?",
		"subject=Math",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Published", "Add Question?", "Add another Question?"}, driver.confirmMsgs); diff != "" {
		t.Fatalf("confirm prompts mismatch (-want +got):\n%s", diff)
	}
	if len(driver.errorsWithPrefix("! Duration (minutes): ")) != 1 {
		t.Fatalf("expected a number error, got %v", driver.infoMessages)
	}
	if len(driver.errorsWithPrefix("! Attachments: missing.pdf")) != 1 {
		t.Fatalf("expected a file error, got %v", driver.infoMessages)
	}
}

func TestRenderFormEncodedReplaysThroughSubmission(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Algebra", "45", "", "", "1+1?", "2", "2+2?", "", ""},
		textAreas: []string{""},
		selectIdx: []int{0},
		confirm:   []bool{false, true, true, false},
	}
	f := testsupport.MustForm(t, testsupport.QuizForm(), nil)

	out, err := newRenderer(t, driver, WithOutputFormat(OutputFormatFormURLEncoded)).Render(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	posted, err := url.ParseQuery(string(out))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if got := posted.Get("questions._count"); got != "2" {
		t.Fatalf("questions._count = %q", got)
	}

	replay := testsupport.MustForm(t, testsupport.QuizForm(), nil)
	if _, err := render.ApplySubmission(replay, posted); err != nil {
		t.Fatalf("apply submission: %v", err)
	}
	for path, want := range map[string]any{
		"name":               "Algebra",
		"duration":           45.0,
		"level":              "",
		"published":          false,
		"questions.0.prompt": "1+1?",
		"questions.0.points": 2.0,
		"questions.1.prompt": "2+2?",
	} {
		got, _ := replay.Value(path)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestRenderArabicPrompts(t *testing.T) {
	def := model.FormDefinition{
		ID: "roster",
		Fields: []model.FieldDefinition{{
			Key:       "students",
			Type:      model.FieldTypeArray,
			Label:     "Students",
			ItemLabel: "طالب",
			Fields:    []model.FieldDefinition{{Key: "name", Type: model.FieldTypeText, Label: "Name"}},
		}},
	}
	driver := &stubDriver{confirm: []bool{false}}
	f := testsupport.MustForm(t, def, nil, form.WithLocale("ar"), form.WithTranslator(i18n.MustNew()))

	if _, err := newRenderer(t, driver).Render(context.Background(), f, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"إضافة طالب؟"}, driver.confirmMsgs); diff != "" {
		t.Fatalf("confirm prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderChoicesAndUnknownTypes(t *testing.T) {
	def := model.FormDefinition{
		ID: "prefs",
		Fields: []model.FieldDefinition{
			{Key: "mood", Type: "rating"},
			{Key: "secret", Type: model.FieldTypePassword, Label: "Secret"},
			{Key: "class", Type: model.FieldTypeRadio, Label: "Class", Required: true, Options: []model.Option{{Label: "One", Value: 1}, {Label: "Two", Value: 2}}},
			{Key: "tags", Type: model.FieldTypeCheckbox, Label: "Tags", Options: []model.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}, {Label: "C", Value: "c"}}},
		},
	}
	driver := &stubDriver{
		passwords: []string{"hunter2"},
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
	}
	f := testsupport.MustForm(t, def, nil)

	out, err := newRenderer(t, driver).Render(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(`{"class":2,"mood":"","secret":"hunter2","tags":["a","c"]}`, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! Unknown field type: rating"}, driver.errorsWithPrefix("! ")); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPropagatesAbort(t *testing.T) {
	driver := &abortDriver{stubDriver{}}
	f := testsupport.MustForm(t, testsupport.QuizForm(), nil)
	_, err := newRenderer(t, driver).Render(context.Background(), f, render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

type abortDriver struct{ stubDriver }

func (d *abortDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestOutputFormats(t *testing.T) {
	for raw, want := range map[string]string{
		"":       "application/json",
		"json":   "application/json",
		"form":   "application/x-www-form-urlencoded",
		"pretty": "text/plain; charset=utf-8",
	} {
		format, err := ParseOutputFormat(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		r := newRenderer(t, &stubDriver{}, WithOutputFormat(format))
		if r.ContentType() != want {
			t.Fatalf("%q content type = %q", raw, r.ContentType())
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Fatal("expected unknown format error")
	}
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatal("expected New to reject unknown format")
	}
}

func intPtr(v int) *int { return &v }
