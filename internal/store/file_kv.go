package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"echoplan/internal/services"
)

// fileState is the on-disk layout of a FileKV.
type fileState struct {
	Values map[string]string `toml:"values"`
}

// FileKV is a key/value store kept in a single TOML file.
type FileKV struct {
	path string
	mu   sync.Mutex
}

var _ services.KeyValueStore = (*FileKV)(nil)

// NewFileKV creates a FileKV backed by path. The file is created on the
// first Set.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Get returns the value stored under key.
func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := state.Values[key]
	return v, ok, nil
}

// Set stores value under key, rewriting the file atomically.
func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.load()
	if err != nil {
		return err
	}
	state.Values[key] = value
	return f.save(state)
}

func (f *FileKV) load() (fileState, error) {
	state := fileState{Values: map[string]string{}}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, fmt.Errorf("reading state: %w", err)
	}
	if err := toml.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("parsing state: %w", err)
	}
	if state.Values == nil {
		state.Values = map[string]string{}
	}
	return state, nil
}

func (f *FileKV) save(state fileState) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return fmt.Errorf("creating state file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := toml.NewEncoder(tmp).Encode(state); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing state: %w", err)
	}
	return nil
}
