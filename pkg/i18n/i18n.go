// Package i18n loads the English and Arabic message catalogues used by the
// form engine, the renderers and the screen widgets.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var embeddedLocales embed.FS

// DefaultLocale is used when callers omit a locale.
const DefaultLocale = "en"

var (
	// ErrMissingMessage reports a key with no message in any candidate locale.
	ErrMissingMessage = errors.New("i18n: message not found")
	// ErrUnsupportedLocale is returned by SetDefault for unknown locales.
	ErrUnsupportedLocale = errors.New("i18n: locale not supported")
)

// Translator resolves message keys for a locale. The optional trailing
// argument is template data (map[string]any).
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate implements Translator.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// Option configures Translations.
type Option func(*config)

type config struct {
	defaultLocale string
	extra         []fs.FS
}

// WithDefaultLocale sets the fallback locale.
func WithDefaultLocale(locale string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			cfg.defaultLocale = trimmed
		}
	}
}

// WithMessagesFS loads additional active.*.toml files from files. Later files
// override embedded messages with the same id.
func WithMessagesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.extra = append(cfg.extra, files)
		}
	}
}

// Translations is a go-i18n bundle plus a locale matcher.
type Translations struct {
	mu            sync.RWMutex
	bundle        *goi18n.Bundle
	matcher       language.Matcher
	defaultLocale string
	localizers    map[string]*goi18n.Localizer
}

var _ Translator = (*Translations)(nil)

// New builds a bundle from the embedded catalogues plus any extra files.
func New(options ...Option) (*Translations, error) {
	cfg := &config{defaultLocale: DefaultLocale}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	defaultTag, err := language.Parse(cfg.defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse default locale %q: %w", cfg.defaultLocale, err)
	}

	bundle := goi18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := loadMessages(bundle, embeddedLocales); err != nil {
		return nil, err
	}
	for _, files := range cfg.extra {
		if err := loadMessages(bundle, files); err != nil {
			return nil, err
		}
	}

	return &Translations{
		bundle:        bundle,
		matcher:       language.NewMatcher(bundle.LanguageTags()),
		defaultLocale: defaultTag.String(),
		localizers:    make(map[string]*goi18n.Localizer),
	}, nil
}

// MustNew panics when the embedded catalogues cannot be parsed.
func MustNew(options ...Option) *Translations {
	t, err := New(options...)
	if err != nil {
		panic(err)
	}
	return t
}

func loadMessages(bundle *goi18n.Bundle, files fs.FS) error {
	return fs.WalkDir(files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := path.Base(p)
		if !strings.HasPrefix(name, "active.") || path.Ext(name) != ".toml" {
			return nil
		}
		data, err := fs.ReadFile(files, p)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", p, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", p, err)
		}
		return nil
	})
}

// DefaultLocale reports the fallback locale.
func (t *Translations) DefaultLocale() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.defaultLocale
}

// SetDefault switches the fallback locale to one of the loaded languages.
func (t *Translations) SetDefault(locale string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == locale {
			t.mu.Lock()
			t.defaultLocale = locale
			t.localizers = make(map[string]*goi18n.Localizer)
			t.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
}

// Locales lists the loaded languages.
func (t *Translations) Locales() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// Match picks the best supported locale for an Accept-Language header or a
// bare tag, falling back to the default locale.
func (t *Translations) Match(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return t.DefaultLocale()
	}
	_, idx, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return t.DefaultLocale()
	}
	supported := t.bundle.LanguageTags()
	if idx < 0 || idx >= len(supported) {
		return t.DefaultLocale()
	}
	return supported[idx].String()
}

// Translate implements Translator. A map[string]any argument is used as
// template data; a "Count" entry selects the plural form.
func (t *Translations) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingMessage
	}

	cfg := &goi18n.LocalizeConfig{MessageID: key}
	for _, arg := range args {
		if data, ok := arg.(map[string]any); ok {
			cfg.TemplateData = data
			if count, ok := data["Count"]; ok {
				cfg.PluralCount = count
			}
		}
	}

	msg, err := t.localizer(locale).Localize(cfg)
	if err != nil {
		var notFound *goi18n.MessageNotFoundErr
		if errors.As(err, &notFound) || msg == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingMessage, key)
		}
		return "", fmt.Errorf("i18n: localize %s: %w", key, err)
	}
	return msg, nil
}

func (t *Translations) localizer(locale string) *goi18n.Localizer {
	locale = strings.TrimSpace(locale)

	t.mu.RLock()
	l, ok := t.localizers[locale]
	fallback := t.defaultLocale
	t.mu.RUnlock()
	if ok {
		return l
	}

	l = goi18n.NewLocalizer(t.bundle, locale, fallback)

	t.mu.Lock()
	t.localizers[locale] = l
	t.mu.Unlock()
	return l
}

// Lookup translates key and falls back to fallback (or the key itself) when
// the translator is nil or the message is missing.
func Lookup(t Translator, locale, key, fallback string, data map[string]any) string {
	if strings.TrimSpace(key) == "" {
		return fallback
	}
	if t != nil {
		var (
			msg string
			err error
		)
		if data != nil {
			msg, err = t.Translate(locale, key, data)
		} else {
			msg, err = t.Translate(locale, key)
		}
		if err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
