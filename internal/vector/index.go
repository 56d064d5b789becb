package vector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"semforge/internal/semtype"
)

// Index stores semantic-type embeddings for similarity search. Remove must be
// tolerant of unknown names: compensation calls it for types whose indexing
// may itself have failed.
type Index interface {
	Index(ctx context.Context, semType *semtype.CustomSemanticType) error
	Remove(ctx context.Context, name string) error
	Search(ctx context.Context, query string, topK int) ([]Match, error)
	Count() int
}

// Match is one similarity-search hit.
type Match struct {
	SemanticType string
	Similarity   float32
}

// Config holds index configuration.
type Config struct {
	PersistPath string // empty for in-memory
	Collection  string
}

type chromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewIndex creates a chromem-go backed index. With a persist path the index
// survives restarts; otherwise it lives in memory (tests, advisory runs).
func NewIndex(config Config, embedder Embedder) (Index, error) {
	if config.Collection == "" {
		config.Collection = "semantic-types"
	}

	var (
		db  *chromem.DB
		err error
	)
	if config.PersistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(config.PersistPath, "index.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("create persistent index: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(config.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &chromemIndex{db: db, collection: collection}, nil
}

func (i *chromemIndex) Index(ctx context.Context, semType *semtype.CustomSemanticType) error {
	if semType == nil || semType.SemanticType == "" {
		return fmt.Errorf("cannot index unnamed type")
	}
	err := i.collection.AddDocument(ctx, chromem.Document{
		ID:      semType.SemanticType,
		Content: indexContent(semType),
		Metadata: map[string]string{
			"pluginType": semType.PluginType,
		},
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", semType.SemanticType, err)
	}
	return nil
}

func (i *chromemIndex) Remove(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if err := i.collection.Delete(ctx, nil, nil, name); err != nil {
		return fmt.Errorf("remove %s from index: %w", name, err)
	}
	return nil
}

func (i *chromemIndex) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	if count := i.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := i.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{SemanticType: r.ID, Similarity: r.Similarity})
	}
	return matches, nil
}

func (i *chromemIndex) Count() int {
	return i.collection.Count()
}

// indexContent builds the searchable text for a type: name, description, and
// a bounded slice of members so list types cluster by their vocabulary.
func indexContent(semType *semtype.CustomSemanticType) string {
	parts := []string{semType.SemanticType, semType.Description}
	members := semType.Members()
	if len(members) > 32 {
		members = members[:32]
	}
	parts = append(parts, members...)
	parts = append(parts, semType.Patterns()...)
	return strings.Join(parts, " ")
}
