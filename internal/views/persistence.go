package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cdtdelta/tablekit/internal/kvstore"
)

// Memory keeps the collection in process. It is the adapter used when no
// durable storage is configured.
type Memory struct {
	mu    sync.Mutex
	views []SavedView
}

func NewMemory(initial ...SavedView) *Memory {
	return &Memory{views: cloneViews(initial)}
}

func (m *Memory) Load(context.Context) ([]SavedView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneViews(m.views), nil
}

func (m *Memory) Save(_ context.Context, views []SavedView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = cloneViews(views)
	return nil
}

// savedViewsFile is the on-disk layout of the YAML adapter.
type savedViewsFile struct {
	Version int         `yaml:"version"`
	Views   []SavedView `yaml:"views"`
}

const fileVersion = 1

// YAMLFile persists the collection to a single YAML file.
type YAMLFile struct {
	path string
}

func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

// Path returns the file location.
func (f *YAMLFile) Path() string { return f.path }

// Load reads the file. A missing file is an empty collection.
func (f *YAMLFile) Load(context.Context) ([]SavedView, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saved views file: %w", err)
	}

	var doc savedViewsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse saved views: %w", err)
	}
	if doc.Version > fileVersion {
		return nil, fmt.Errorf("saved views file version %d is newer than supported version %d", doc.Version, fileVersion)
	}
	return doc.Views, nil
}

// Save writes the file through a temporary file in the same directory.
func (f *YAMLFile) Save(_ context.Context, views []SavedView) error {
	data, err := yaml.Marshal(savedViewsFile{Version: fileVersion, Views: views})
	if err != nil {
		return fmt.Errorf("failed to marshal saved views: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write saved views file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write saved views file: %w", err)
	}
	return nil
}

// KVPersistence stores the collection as one JSON value in a key-value
// store.
type KVPersistence struct {
	store kvstore.Store
	key   string
}

func NewKVPersistence(store kvstore.Store, key string) *KVPersistence {
	return &KVPersistence{store: store, key: key}
}

func (p *KVPersistence) Load(ctx context.Context) ([]SavedView, error) {
	data, err := p.store.Get(ctx, p.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var views []SavedView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, fmt.Errorf("decode saved views: %w", err)
	}
	return views, nil
}

func (p *KVPersistence) Save(ctx context.Context, views []SavedView) error {
	if views == nil {
		views = []SavedView{}
	}
	data, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("encode saved views: %w", err)
	}
	return p.store.Set(ctx, p.key, data)
}
