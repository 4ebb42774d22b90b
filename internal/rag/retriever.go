package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks edgar-ai/internal/rag Embedder

import (
	"context"
	"fmt"
	"time"

	"edgar-ai/internal/contextutil"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/query"
	"edgar-ai/internal/vectorstore"
)

// Embedder converts texts to fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// overFetchFactor is how many times topK the retriever requests from the
// index, giving the reranker slack to reorder.
const overFetchFactor = 2

// retrieve embeds the query, searches the index with the filters translated
// to store constraints, and hydrates hits into candidates from the chunk
// rows. Returns the candidates ordered by ascending distance plus the raw
// hit count. Empty retrieval is a valid result, not an error.
func (e *engine) retrieve(ctx context.Context, queryText string, filters query.Filters, topK int) ([]Candidate, int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embedStart := time.Now()
	vectors, err := e.embedder.EmbedTexts(ctx, []string{queryText})
	if err != nil {
		return nil, 0, classifyExternal(ctx, "failed to embed query", err)
	}
	e.metrics.RecordStage(metrics.StageEmbed, time.Since(embedStart))
	if len(vectors) == 0 {
		return nil, 0, fmt.Errorf("no embedding returned for query")
	}

	retrieveK := overFetchFactor * topK
	searchStart := time.Now()
	hits, err := e.vectorStore.Search(ctx, e.collection, vectors[0], retrieveK, searchFilter(filters))
	if err != nil {
		return nil, 0, classifyStore(ctx, "failed to search vector store", err)
	}
	e.metrics.RecordStage(metrics.StageRetrieve, time.Since(searchStart))

	if len(hits) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.PointID
	}
	rows, err := e.chunkRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load chunk rows: %w", err)
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		row, ok := rows[hit.PointID]
		if !ok {
			// Index and registry drifted; answer from what we have.
			logger.WarnContext(ctx, "chunk row missing for index hit", "point_id", hit.PointID)
			continue
		}
		candidates = append(candidates, Candidate{
			ChunkID:    row.ChunkID,
			Ticker:     row.Ticker,
			FilingType: row.FilingType,
			FilingDate: row.FilingDate,
			Section:    row.Section,
			Position:   row.Position,
			Text:       row.Text,
			Distance:   hit.Distance,
		})
	}
	return candidates, len(hits), nil
}

// searchFilter translates recognized query filters into store constraints.
// A fiscal year becomes a filing-date range over [Y-01-01, (Y+1)-06-30]:
// annual reports for fiscal year Y are filed either late in Y or in the
// first half of Y+1.
func searchFilter(filters query.Filters) *vectorstore.SearchFilter {
	if filters.IsZero() {
		return nil
	}
	sf := &vectorstore.SearchFilter{
		Ticker:     filters.Ticker,
		FilingType: string(filters.FilingType),
	}
	if filters.FiscalYear != 0 {
		sf.DateFrom = time.Date(filters.FiscalYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		sf.DateTo = time.Date(filters.FiscalYear+1, time.June, 30, 0, 0, 0, 0, time.UTC)
	}
	return sf
}
