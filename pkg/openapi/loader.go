package openapi

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"
)

var (
	// ErrNoSource is returned when Load is called without a source.
	ErrNoSource = errors.New("openapi: source is required")
	// ErrEmptyDocument rejects zero-length documents.
	ErrEmptyDocument = errors.New("openapi: document is empty")
	// ErrRemoteDisabled rejects URL sources on a loader built without remote
	// access.
	ErrRemoteDisabled = errors.New("openapi: remote sources are disabled")
	// ErrUnsupportedSource rejects source kinds the loader does not know.
	ErrUnsupportedSource = errors.New("openapi: unsupported source kind")
)

// Loader reads the OpenAPI document a form is imported from.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures a Loader. Local files are always readable;
// remote documents need Remote.
type LoaderOptions struct {
	// FileSystem backs SourceFromFS locations.
	FileSystem fs.FS
	// Remote enables SourceFromURL locations.
	Remote bool
	// Client fetches remote documents. A client with Timeout applied is
	// created when nil.
	Client *http.Client
	// Timeout bounds a single remote fetch. Zero means no limit.
	Timeout time.Duration
}

// LoaderOption mutates LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem serves SourceFromFS locations from files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPFallback enables remote documents with an optional per fetch
// timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Remote = true
		opts.Timeout = timeout
	}
}

// WithDefaultSources enables remote documents without a fetch timeout.
func WithDefaultSources() LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Remote = true
	}
}

// NewLoaderOptions applies options over the zero configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
