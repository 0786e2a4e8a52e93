package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formscreen/pkg/model"
)

var (
	ErrFormNotFound   = errors.New("loader: form not found")
	ErrScreenNotFound = errors.New("loader: screen not found")
)

// DuplicateIDError reports a definition id declared twice.
type DuplicateIDError struct {
	Kind   string
	ID     string
	First  string
	Second string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("loader: duplicate %s %q (files %s and %s)", e.Kind, e.ID, e.First, e.Second)
}

// Store holds the definitions read by LoadFS.
type Store struct {
	forms   map[string]model.FormDefinition
	screens map[string]model.ScreenSchema
	sources map[string]string
}

// NewStore returns an empty store. Add and AddScreen populate it in code.
func NewStore() *Store {
	return &Store{
		forms:   make(map[string]model.FormDefinition),
		screens: make(map[string]model.ScreenSchema),
		sources: make(map[string]string),
	}
}

// LoadFS walks fsys and parses every *.json, *.yaml and *.yml file. When fsys
// is nil the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("loader: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		return store.addDocument(doc, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// AddForm validates def and stores it. source names the origin for
// duplicate reports.
func (s *Store) AddForm(def model.FormDefinition, source string) error {
	id := strings.TrimSpace(def.ID)
	if id == "" {
		return fmt.Errorf("loader: form without id (file %s)", source)
	}
	def.ID = id
	if err := def.Validate(); err != nil {
		return fmt.Errorf("loader: form %q (file %s): %w", id, source, err)
	}
	key := "form:" + id
	if first, exists := s.sources[key]; exists {
		return DuplicateIDError{Kind: "form", ID: id, First: first, Second: source}
	}
	s.sources[key] = source
	s.forms[id] = def
	return nil
}

// AddScreen validates schema and stores it.
func (s *Store) AddScreen(schema model.ScreenSchema, source string) error {
	id := strings.TrimSpace(schema.ID)
	if id == "" {
		return fmt.Errorf("loader: screen without id (file %s)", source)
	}
	schema.ID = id
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("loader: screen %q (file %s): %w", id, source, err)
	}
	key := "screen:" + id
	if first, exists := s.sources[key]; exists {
		return DuplicateIDError{Kind: "screen", ID: id, First: first, Second: source}
	}
	s.sources[key] = source
	s.screens[id] = schema
	return nil
}

// Form returns the form definition registered under id.
func (s *Store) Form(id string) (model.FormDefinition, bool) {
	if s == nil {
		return model.FormDefinition{}, false
	}
	def, ok := s.forms[id]
	return def, ok
}

// Screen returns the screen schema registered under id.
func (s *Store) Screen(id string) (model.ScreenSchema, bool) {
	if s == nil {
		return model.ScreenSchema{}, false
	}
	schema, ok := s.screens[id]
	return schema, ok
}

// FormIDs lists form ids sorted.
func (s *Store) FormIDs() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.forms)
}

// ScreenIDs lists screen ids sorted.
func (s *Store) ScreenIDs() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.screens)
}

// Source returns the file a definition was read from.
func (s *Store) Source(kind, id string) string {
	if s == nil {
		return ""
	}
	return s.sources[kind+":"+id]
}

// Empty reports whether the store holds no definitions.
func (s *Store) Empty() bool {
	return s == nil || (len(s.forms) == 0 && len(s.screens) == 0)
}

type documentFile struct {
	Forms   map[string]model.FormDefinition `json:"forms" yaml:"forms"`
	Screens map[string]model.ScreenSchema   `json:"screens" yaml:"screens"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("loader: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("loader: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("loader: parse %s: %w", source, err)
	}
	return doc, nil
}

func (s *Store) addDocument(doc documentFile, source string) error {
	for _, key := range sortedKeys(doc.Forms) {
		def := doc.Forms[key]
		if strings.TrimSpace(def.ID) == "" {
			def.ID = key
		}
		if def.ID != key {
			return fmt.Errorf("loader: form key %q does not match id %q (file %s)", key, def.ID, source)
		}
		if err := s.AddForm(def, source); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(doc.Screens) {
		schema := doc.Screens[key]
		if strings.TrimSpace(schema.ID) == "" {
			schema.ID = key
		}
		if schema.ID != key {
			return fmt.Errorf("loader: screen key %q does not match id %q (file %s)", key, schema.ID, source)
		}
		if err := s.AddScreen(schema, source); err != nil {
			return err
		}
	}
	return nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
