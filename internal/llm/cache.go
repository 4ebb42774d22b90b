package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// EmbeddingCache stores embeddings keyed by input text. Implementations must
// tolerate concurrent reads and concurrent idempotent writes (the same text
// always maps to the same vector, so a racing write is harmless).
type EmbeddingCache interface {
	Get(text string) ([]float32, bool)
	Set(text string, vec []float32)
}

// MemoryCache is an in-memory EmbeddingCache. Keys are hashed so arbitrarily
// long query texts stay cheap to store.
type MemoryCache struct {
	entries sync.Map
}

// NewMemoryCache creates an empty in-memory embedding cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for text, if present.
func (c *MemoryCache) Get(text string) ([]float32, bool) {
	v, ok := c.entries.Load(cacheKey(text))
	if !ok {
		return nil, false
	}
	return v.([]float32), true
}

// Set stores the vector for text.
func (c *MemoryCache) Set(text string, vec []float32) {
	c.entries.Store(cacheKey(text), vec)
}

// TextEmbedder generates embeddings for batches of text.
type TextEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CachedEmbedder wraps a TextEmbedder with a cache consulted per text.
// Identical texts hit the upstream API at most once.
type CachedEmbedder struct {
	inner TextEmbedder
	cache EmbeddingCache
}

// NewCachedEmbedder wraps inner with the given cache.
func NewCachedEmbedder(inner TextEmbedder, cache EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

// EmbedTexts returns one vector per input text, in input order. Cached texts
// are served locally; only misses are sent upstream.
func (e *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := e.cache.Get(text); ok {
			result[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return result, nil
	}

	vecs, err := e.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}

	for j, vec := range vecs {
		idx := missingIdx[j]
		result[idx] = vec
		e.cache.Set(texts[idx], vec)
	}

	return result, nil
}
