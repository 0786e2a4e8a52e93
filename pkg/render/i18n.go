package render

import (
	"strings"

	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
)

// Effective returns options with Locale and Translator defaulted from the
// form.
func Effective(f *form.Form, options RenderOptions) RenderOptions {
	if strings.TrimSpace(options.Locale) == "" && f != nil {
		options.Locale = f.Locale()
	}
	if strings.TrimSpace(options.Locale) == "" {
		options.Locale = i18n.DefaultLocale
	}
	if options.Translator == nil && f != nil {
		options.Translator = f.Translator()
	}
	return options
}

// LocalizeDefinition returns a copy of def whose display strings are resolved
// through t. Every *Key field wins over its literal counterpart; a missing
// translation keeps the literal text. Labels left empty are derived from the
// field key.
func LocalizeDefinition(def model.FormDefinition, locale string, t i18n.Translator) model.FormDefinition {
	out := def
	out.Title = translate(t, locale, def.TitleKey, def.Title)
	out.SubmitText = translate(t, locale, def.SubmitTextKey, def.SubmitText)
	if out.SubmitText == "" {
		out.SubmitText = i18n.Lookup(t, locale, "form.submit", "Submit", nil)
	}
	out.ResetText = translate(t, locale, def.ResetTextKey, def.ResetText)
	if out.ResetText == "" {
		out.ResetText = i18n.Lookup(t, locale, "form.reset", "Reset", nil)
	}
	out.Fields = localizeFields(def.Fields, locale, t)
	return out
}

func localizeFields(fields []model.FieldDefinition, locale string, t i18n.Translator) []model.FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]model.FieldDefinition, len(fields))
	for i, field := range fields {
		field.Label = translate(t, locale, field.LabelKey, field.Label)
		if field.Label == "" {
			field.Label = model.DisplayLabel(field)
		}
		field.Placeholder = translate(t, locale, field.PlaceholderKey, field.Placeholder)
		if len(field.Options) > 0 {
			options := make([]model.Option, len(field.Options))
			for j, option := range field.Options {
				option.Label = translate(t, locale, option.LabelKey, option.Label)
				options[j] = option
			}
			field.Options = options
		}
		field.Fields = localizeFields(field.Fields, locale, t)
		out[i] = field
	}
	return out
}

func translate(t i18n.Translator, locale, key, fallback string) string {
	if strings.TrimSpace(key) == "" {
		return fallback
	}
	return i18n.Lookup(t, locale, key, fallback, nil)
}

// TemplateFuncs returns helpers for template engines: t(key) translates a
// key and tf(key, fallback) translates with a literal fallback.
func TemplateFuncs(t i18n.Translator, locale string) map[string]any {
	return map[string]any{
		"t": func(key string) string {
			return i18n.Lookup(t, locale, key, "", nil)
		},
		"tf": func(key, fallback string) string {
			return i18n.Lookup(t, locale, key, fallback, nil)
		},
	}
}
