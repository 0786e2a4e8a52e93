package openapi

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source names where an OpenAPI document lives.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind selects how a Loader reads a Source.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// source is the Source implementation shared by the built-in kinds.
type source struct {
	kind     SourceKind
	location string
}

func (s source) Location() string { return s.location }

func (s source) Kind() SourceKind { return s.kind }

func (s source) String() string { return string(s.kind) + ":" + s.location }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(p string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(p)}
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
// Leading slashes are dropped since fs.FS paths are unrooted.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: path.Clean(strings.TrimLeft(name, "/"))}
}

// SourceFromURL returns a Source for an http or https document. It panics on
// invalid input; use ParseSource for values typed by users.
func SourceFromURL(raw string) Source {
	src, err := urlSource(raw)
	if err != nil {
		panic(err)
	}
	return src
}

// ParseSource classifies raw as a URL when it carries an http or https scheme
// and as a file path otherwise.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("openapi: empty source")
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return urlSource(raw)
	}
	return SourceFromFile(raw), nil
}

func urlSource(raw string) (Source, error) {
	if raw == "" {
		return nil, errors.New("openapi: empty URL source")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("openapi: URL %q has no host", raw)
	}
	return source{kind: SourceKindURL, location: raw}, nil
}
