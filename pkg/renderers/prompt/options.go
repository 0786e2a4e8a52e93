package prompt

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formscreen/pkg/model"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat maps a flag value to a format, defaulting to JSON.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	switch OutputFormat(raw) {
	case "", OutputFormatJSON:
		return OutputFormatJSON, nil
	case OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return OutputFormat(raw), nil
	default:
		return "", fmt.Errorf("prompt: unknown output format %q", raw)
	}
}

// Theme captures optional prefixes the renderer adds to printed messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// FileStatFunc resolves a path typed at a multi-file prompt.
type FileStatFunc func(path string) (model.FileValue, error)

// Option configures the prompt renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithFileStat replaces the lookup used for multi-file answers.
func WithFileStat(fn FileStatFunc) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.statFile = fn
		}
	}
}

func statFile(path string) (model.FileValue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.FileValue{}, err
	}
	if info.IsDir() {
		return model.FileValue{}, fmt.Errorf("%s is a directory", path)
	}
	return model.FileValue{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}, nil
}
