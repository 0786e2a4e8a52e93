package loader

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	pkgopenapi "github.com/goliatone/go-formscreen/pkg/openapi"
)

// Loader reads OpenAPI documents from disk, an fs.FS or, when enabled, over
// HTTP.
type Loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New builds a Loader. Remote documents stay disabled unless options.Remote
// is set.
func New(options pkgopenapi.LoaderOptions) *Loader {
	l := &Loader{files: options.FileSystem, timeout: options.Timeout}
	if !options.Remote {
		return l
	}
	if options.Client != nil {
		l.client = options.Client
	} else {
		l.client = &http.Client{}
	}
	return l
}

// Load reads src and wraps the payload in a Document.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, pkgopenapi.ErrNoSource
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case pkgopenapi.SourceKindFS:
		data, err = loadFromFS(ctx, l.files, src.Location())
	case pkgopenapi.SourceKindURL:
		if l.client == nil {
			return pkgopenapi.Document{}, fmt.Errorf("%w: %s", pkgopenapi.ErrRemoteDisabled, src.Location())
		}
		data, err = l.fetch(ctx, src.Location())
	default:
		err = fmt.Errorf("%w %q", pkgopenapi.ErrUnsupportedSource, src.Kind())
	}
	if err != nil {
		return pkgopenapi.Document{}, err
	}
	return pkgopenapi.NewDocument(src, data)
}
