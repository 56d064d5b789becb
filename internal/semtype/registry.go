package semtype

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors.
var (
	ErrNotFound = errors.New("semantic type not found")
	ErrExists   = errors.New("semantic type already exists")
)

// Registry stores custom semantic types. Implementations must be safe for
// concurrent use; optimization tasks from multiple agents write through it.
type Registry interface {
	Add(ctx context.Context, semType *CustomSemanticType) error
	Update(ctx context.Context, semType *CustomSemanticType) error
	Remove(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (*CustomSemanticType, error)
	List(ctx context.Context) ([]*CustomSemanticType, error)
}

// InMemoryRegistry keeps types in a mutex-guarded map. It backs tests and
// advisory (non-persisted) runs.
type InMemoryRegistry struct {
	mu    sync.RWMutex
	types map[string]*CustomSemanticType
}

// NewInMemoryRegistry creates an empty in-memory registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{types: make(map[string]*CustomSemanticType)}
}

func (r *InMemoryRegistry) Add(ctx context.Context, semType *CustomSemanticType) error {
	if err := validate(semType); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[semType.SemanticType]; exists {
		return fmt.Errorf("add %s: %w", semType.SemanticType, ErrExists)
	}
	r.types[semType.SemanticType] = semType
	return nil
}

func (r *InMemoryRegistry) Update(ctx context.Context, semType *CustomSemanticType) error {
	if err := validate(semType); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[semType.SemanticType]; !exists {
		return fmt.Errorf("update %s: %w", semType.SemanticType, ErrNotFound)
	}
	r.types[semType.SemanticType] = semType
	return nil
}

func (r *InMemoryRegistry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; !exists {
		return fmt.Errorf("remove %s: %w", name, ErrNotFound)
	}
	delete(r.types, name)
	return nil
}

func (r *InMemoryRegistry) Get(ctx context.Context, name string) (*CustomSemanticType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	semType, exists := r.types[name]
	if !exists {
		return nil, fmt.Errorf("get %s: %w", name, ErrNotFound)
	}
	return semType, nil
}

func (r *InMemoryRegistry) List(ctx context.Context) ([]*CustomSemanticType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CustomSemanticType, 0, len(r.types))
	for _, semType := range r.types {
		out = append(out, semType)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SemanticType < out[j].SemanticType })
	return out, nil
}

func validate(semType *CustomSemanticType) error {
	if semType == nil || semType.SemanticType == "" {
		return errors.New("semantic type name is required")
	}
	switch semType.PluginType {
	case PluginList:
		if semType.Content == nil || len(semType.Content.Values) == 0 {
			return fmt.Errorf("list plugin %s has no members", semType.SemanticType)
		}
	case PluginRegex:
		if len(semType.Patterns()) == 0 {
			return fmt.Errorf("regex plugin %s has no patterns", semType.SemanticType)
		}
	default:
		return fmt.Errorf("unsupported plugin type %q for %s", semType.PluginType, semType.SemanticType)
	}
	if semType.Threshold < 0 || semType.Threshold > 100 {
		return fmt.Errorf("threshold %d out of range for %s", semType.Threshold, semType.SemanticType)
	}
	return nil
}
