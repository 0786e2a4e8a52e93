package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgopenapi "github.com/goliatone/go-formscreen/pkg/openapi"
)

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	files := fstest.MapFS{"empty.yaml": {Data: nil}}
	l := New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithFileSystem(files)))

	_, err := l.Load(ctx, nil)
	assert.ErrorIs(t, err, pkgopenapi.ErrNoSource)

	_, err = l.Load(ctx, pkgopenapi.SourceFromFS("empty.yaml"))
	assert.ErrorIs(t, err, pkgopenapi.ErrEmptyDocument)

	_, err = l.Load(ctx, pkgopenapi.SourceFromFS("missing.yaml"))
	assert.Error(t, err)

	_, err = l.Load(ctx, pkgopenapi.SourceFromURL("http://example.test/openapi.yaml"))
	assert.ErrorIs(t, err, pkgopenapi.ErrRemoteDisabled)
}

func TestFetchRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		default:
			_, _ = w.Write([]byte("openapi: 3.0.0"))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	l := New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithHTTPFallback(50 * time.Millisecond)))

	doc, err := l.Load(ctx, pkgopenapi.SourceFromURL(srv.URL+"/openapi.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openapi: 3.0.0", string(doc.Raw()))

	_, err = l.Load(ctx, pkgopenapi.SourceFromURL(srv.URL+"/missing"))
	assert.ErrorContains(t, err, "unexpected status 404")

	_, err = l.Load(ctx, pkgopenapi.SourceFromURL(srv.URL+"/slow"))
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}
