package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Storer is read access to a set of validated definitions keyed by id.
type Storer[T ValidatingSpec] interface {
	Get(string) T
	Lookup(string) (T, bool)
	GetAll() map[string]T
	Ids() []string
}

// FileStore loads every .json, .yaml and .yml asset below a directory.
type FileStore[T ValidatingSpec] struct {
	path    string
	records map[string]T

	mu sync.RWMutex
}

func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	s := &FileStore[T]{
		path:    path,
		records: map[string]T{},
	}

	err := s.load()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore[T]) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clear existing records when loading
	s.records = map[string]T{}

	return filepath.Walk(s.path, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if info.IsDir() || !isAssetFile(path) {
			return nil
		}

		asset, err := s.loadAsset(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}

		err = asset.Validate()
		if err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
		}

		// Error if the key is already in use
		_, ok := s.records[asset.Id()]
		if ok {
			return fmt.Errorf("duplicate key detected: %s", asset.Id())
		}

		s.records[asset.Id()] = asset.Spec
		return nil
	})
}

func isAssetFile(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func (s *FileStore[T]) Get(id string) T {
	val, _ := s.Lookup(id)
	return val
}

func (s *FileStore[T]) Lookup(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[id]
	return val, ok
}

func (s *FileStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}

	return vals
}

// Ids returns every record id in sorted order.
func (s *FileStore[T]) Ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.records)
}

func (s *FileStore[T]) loadAsset(path string) (*Asset[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	asset := &Asset[T]{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, asset)
	default:
		err = json.Unmarshal(data, asset)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return asset, nil
}

// MemoryStore is a Storer over a fixed map. Records are validated on
// construction the same way FileStore validates files.
type MemoryStore[T ValidatingSpec] struct {
	records map[string]T
}

func NewMemoryStore[T ValidatingSpec](records map[string]T) (*MemoryStore[T], error) {
	s := &MemoryStore[T]{records: make(map[string]T, len(records))}
	for _, id := range sortedKeys(records) {
		asset := &Asset[T]{Version: 1, Identifier: id, Spec: records[id]}
		if err := asset.Validate(); err != nil {
			return nil, fmt.Errorf("validating %s: %w", id, err)
		}
		s.records[id] = records[id]
	}
	return s, nil
}

func (s *MemoryStore[T]) Get(id string) T {
	return s.records[id]
}

func (s *MemoryStore[T]) Lookup(id string) (T, bool) {
	val, ok := s.records[id]
	return val, ok
}

func (s *MemoryStore[T]) GetAll() map[string]T {
	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}

func (s *MemoryStore[T]) Ids() []string {
	return sortedKeys(s.records)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
