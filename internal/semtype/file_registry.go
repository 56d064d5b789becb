package semtype

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileRegistry provides file-based persistence for custom semantic types,
// one JSON document per type under a single directory.
type FileRegistry struct {
	dir string
	mu  sync.RWMutex
}

// NewFileRegistry creates (or reopens) a registry at the given directory.
func NewFileRegistry(dir string) (*FileRegistry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create registry dir: %w", err)
	}
	return &FileRegistry{dir: dir}, nil
}

func (r *FileRegistry) path(name string) string {
	// Type names contain dots ("ORDER.STATUS") which are safe; separators are not.
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return filepath.Join(r.dir, safe+".json")
}

func (r *FileRegistry) write(semType *CustomSemanticType) error {
	data, err := json.MarshalIndent(semType, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal type: %w", err)
	}
	path := r.path(semType.SemanticType)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write type: %w", err)
	}
	return os.Rename(tmp, path)
}

func (r *FileRegistry) read(name string) (*CustomSemanticType, error) {
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("type %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read type %s: %w", name, err)
	}
	var semType CustomSemanticType
	if err := json.Unmarshal(data, &semType); err != nil {
		return nil, fmt.Errorf("decode type %s: %w", name, err)
	}
	return &semType, nil
}

func (r *FileRegistry) Add(ctx context.Context, semType *CustomSemanticType) error {
	if err := validate(semType); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(r.path(semType.SemanticType)); err == nil {
		return fmt.Errorf("add %s: %w", semType.SemanticType, ErrExists)
	}
	return r.write(semType)
}

func (r *FileRegistry) Update(ctx context.Context, semType *CustomSemanticType) error {
	if err := validate(semType); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(r.path(semType.SemanticType)); err != nil {
		return fmt.Errorf("update %s: %w", semType.SemanticType, ErrNotFound)
	}
	return r.write(semType)
}

func (r *FileRegistry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := os.Remove(r.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, ErrNotFound)
	}
	return err
}

func (r *FileRegistry) Get(ctx context.Context, name string) (*CustomSemanticType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(name)
}

func (r *FileRegistry) List(ctx context.Context) ([]*CustomSemanticType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read registry dir: %w", err)
	}
	types := make([]*CustomSemanticType, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			continue
		}
		var semType CustomSemanticType
		if err := json.Unmarshal(data, &semType); err != nil {
			continue
		}
		types = append(types, &semType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].SemanticType < types[j].SemanticType })
	return types, nil
}
