package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	pkgopenapi "github.com/goliatone/go-formscreen/pkg/openapi"
)

// loadFile reads an OpenAPI document from disk, resolving relative paths
// against the working directory.
func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("openapi: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: resolve %s: %w", path, err)
	}
	return readLocal(ctx, abs, os.ReadFile)
}

// loadFromFS reads name from the configured filesystem.
func loadFromFS(ctx context.Context, filesystem fs.FS, name string) ([]byte, error) {
	if filesystem == nil {
		return nil, errors.New("openapi: filesystem is not configured")
	}
	if name == "" {
		return nil, errors.New("openapi: fs path is required")
	}
	return readLocal(ctx, name, func(name string) ([]byte, error) {
		return fs.ReadFile(filesystem, name)
	})
}

func readLocal(ctx context.Context, name string, read func(string) ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := read(name)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", pkgopenapi.ErrEmptyDocument, name)
	}
	return data, nil
}
