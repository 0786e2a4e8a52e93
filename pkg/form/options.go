package form

import (
	"context"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
)

// SubmitFunc receives the flat result of a valid submit.
type SubmitFunc func(ctx context.Context, result map[string]any) error

// FieldValidator returns the error message for a value, or "" when valid.
type FieldValidator interface {
	Validate(locale string, field model.FieldDefinition, value any) string
}

// SubmitErrorPolicy controls what happens when the submit handler fails.
type SubmitErrorPolicy int

const (
	// SubmitErrorSurface logs the failure, stores it on the form and returns it.
	SubmitErrorSurface SubmitErrorPolicy = iota
	// SubmitErrorLog logs the failure and reports a successful submit.
	SubmitErrorLog
)

// String implements fmt.Stringer.
func (p SubmitErrorPolicy) String() string {
	if p == SubmitErrorLog {
		return "log"
	}
	return "surface"
}

// ParseSubmitErrorPolicy maps "surface" and "log" to a policy. Anything else
// yields SubmitErrorSurface.
func ParseSubmitErrorPolicy(raw string) SubmitErrorPolicy {
	if strings.EqualFold(strings.TrimSpace(raw), "log") {
		return SubmitErrorLog
	}
	return SubmitErrorSurface
}

// Option configures a Form.
type Option func(*Form)

// WithValidator replaces the default rule validator.
func WithValidator(v FieldValidator) Option {
	return func(f *Form) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithLogger sets the logger used for submit failures.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithSubmitErrorPolicy selects the handler failure policy.
func WithSubmitErrorPolicy(policy SubmitErrorPolicy) Option {
	return func(f *Form) {
		f.policy = policy
	}
}

// WithLocale sets the locale used for validation messages.
func WithLocale(locale string) Option {
	return func(f *Form) {
		f.locale = strings.TrimSpace(locale)
	}
}

// WithTranslator localizes default validation messages.
func WithTranslator(t i18n.Translator) Option {
	return func(f *Form) {
		f.translator = t
	}
}
