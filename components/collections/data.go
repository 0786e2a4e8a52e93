package collections

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed data/*.json
var dataFS embed.FS

var (
	demoOnce        sync.Once
	demoCollections map[string][]map[string]any
	demoErr         error
)

// DemoCollections returns the embedded sample collections keyed by file
// name without extension ("students", "quizzes"). Callers receive a copy of
// the row slices.
func DemoCollections() (map[string][]map[string]any, error) {
	demoOnce.Do(func() {
		demoCollections, demoErr = LoadCollections(dataFS, "data")
	})
	if demoErr != nil {
		return nil, demoErr
	}
	return cloneCollections(demoCollections), nil
}

// LoadCollections reads every *.json file directly under dir. Each file holds
// a JSON array of objects.
func LoadCollections(fsys fs.FS, dir string) (map[string][]map[string]any, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("collections: read %s: %w", dir, err)
	}
	out := make(map[string][]map[string]any, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("collections: read %s: %w", entry.Name(), err)
		}
		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("collections: decode %s: %w", entry.Name(), err)
		}
		out[strings.TrimSuffix(entry.Name(), ".json")] = rows
	}
	return out, nil
}
