// Package vector indexes semantic types for similarity search so newly
// synthesized types can be deduplicated against existing ones.
package vector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Embedder generates text embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// localEmbedder is a deterministic, dependency-free embedder: a hashed
// bag-of-tokens vector, L2-normalized. Good enough for deduplicating type
// descriptions without a remote embedding service, and fully reproducible.
type localEmbedder struct {
	dims int
}

// NewLocalEmbedder returns the deterministic token-hash embedder.
func NewLocalEmbedder() Embedder {
	return &localEmbedder{dims: 128}
}

func (e *localEmbedder) Dimensions() int { return e.dims }

func (e *localEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%e.dims]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		// Zero vectors break cosine similarity; give empty text a fixed basis.
		vec[0] = 1
		return vec, nil
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// cachedEmbedder memoizes embeddings in an LRU cache; type descriptions
// repeat heavily across re-index and compensation cycles.
type cachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with an LRU cache of the given size.
func NewCachedEmbedder(inner Embedder, size int) (Embedder, error) {
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &cachedEmbedder{inner: inner, cache: cache}, nil
}

func (e *cachedEmbedder) Dimensions() int { return e.inner.Dimensions() }

func (e *cachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, vec)
	return vec, nil
}
