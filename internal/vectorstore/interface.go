package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks edgar-ai/internal/vectorstore VectorStore

import (
	"context"
	"time"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchFilter narrows a similarity search to matching points.
// Zero-valued fields are ignored.
type SearchFilter struct {
	Ticker     string
	FilingType string
	// DateFrom and DateTo bound the filing date, inclusive.
	DateFrom time.Time
	DateTo   time.Time
}

// IsZero reports whether no filter field is set.
func (f *SearchFilter) IsZero() bool {
	return f == nil || (f.Ticker == "" && f.FilingType == "" && f.DateFrom.IsZero() && f.DateTo.IsZero())
}

// SearchResult represents one hit from a similarity search.
// Distance is 1 - cosine similarity: 0 is an exact match, larger is worse.
type SearchResult struct {
	PointID  string
	Distance float64
	Meta     map[string]any
}

// VectorStore defines the interface for vector index operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection. Writing the same
	// point id again replaces the stored vector and payload.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to k nearest points, optionally narrowed by filter,
	// ordered by ascending distance.
	Search(ctx context.Context, collection string, query []float32, k int, filter *SearchFilter) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
