package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks edgar-ai/internal/ingest Embedder

import (
	"context"
	"fmt"

	"edgar-ai/internal/contextutil"
	"edgar-ai/internal/filings"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/storage"
	"edgar-ai/internal/vectorstore"
)

// embedBatchSize bounds how many chunk texts go into one embedding request.
const embedBatchSize = 100

// Embedder converts texts to fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline ingests parsed filings into the chunk registry and the vector
// index.
type Pipeline struct {
	chunker     *filings.SectionChunker
	embedder    Embedder
	companyRepo storage.CompanyStore
	chunkRepo   storage.ChunkStore
	vectorStore vectorstore.VectorStore
	collection  string
	metrics     *metrics.Metrics
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	embedder Embedder,
	companyRepo storage.CompanyStore,
	chunkRepo storage.ChunkStore,
	vectorStore vectorstore.VectorStore,
	collection string,
	m *metrics.Metrics,
) *Pipeline {
	return &Pipeline{
		chunker:     filings.NewSectionChunker(),
		embedder:    embedder,
		companyRepo: companyRepo,
		chunkRepo:   chunkRepo,
		vectorStore: vectorStore,
		collection:  collection,
		metrics:     m,
	}
}

// IngestFile loads one parsed filing JSON file and ingests it.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (FilingResult, error) {
	filing, err := filings.LoadParsedFiling(path)
	if err != nil {
		return FilingResult{}, err
	}
	return p.IngestFiling(ctx, filing)
}

// IngestFiling chunks, embeds and indexes one parsed filing. Chunk ids are
// deterministic, so re-ingesting the same filing overwrites its previous
// chunks; chunks from an earlier parse that no longer exist are removed
// from both stores.
func (p *Pipeline) IngestFiling(ctx context.Context, filing *filings.ParsedFiling) (FilingResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	result := FilingResult{
		Ticker:     filing.Ticker,
		FilingType: string(filing.FilingType),
		FilingDate: filing.FilingDate,
	}

	chunks := p.chunker.ChunkFiling(filing)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks produced",
			"ticker", filing.Ticker,
			"filing_type", filing.FilingType,
			"filing_date", filing.FilingDate,
		)
		return result, nil
	}

	if err := p.companyRepo.Upsert(ctx, filing.Ticker, filing.CompanyName); err != nil {
		return result, fmt.Errorf("failed to register company: %w", err)
	}

	// Previous index state, for stale-chunk cleanup after the upsert.
	oldIDs, err := p.chunkRepo.ListIDsByFiling(ctx, filing.Ticker, string(filing.FilingType), filing.FilingDate)
	if err != nil {
		return result, fmt.Errorf("failed to list existing chunks: %w", err)
	}

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return result, err
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	newIDs := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		chunk := &chunks[i]
		pointID := filings.PointID(chunk.ID)
		newIDs[pointID] = struct{}{}

		records[i] = &storage.ChunkRecord{
			ID:         pointID,
			ChunkID:    chunk.ID,
			Ticker:     chunk.Ticker,
			FilingType: string(chunk.FilingType),
			FilingDate: chunk.FilingDate,
			Section:    chunk.Section,
			Position:   chunk.Position,
			Text:       chunk.Text,
		}
		points[i] = vectorstore.Point{
			ID:   pointID,
			Vec:  vectors[i],
			Meta: chunk.Payload(),
		}
	}

	if err := p.chunkRepo.Upsert(ctx, records); err != nil {
		return result, fmt.Errorf("failed to store chunks: %w", err)
	}
	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return result, fmt.Errorf("failed to index chunks: %w", err)
	}

	var stale []string
	for _, id := range oldIDs {
		if _, ok := newIDs[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, stale); err != nil {
			// The registry delete below keeps queries consistent; the
			// orphaned points disappear on the next re-ingest.
			logger.WarnContext(ctx, "failed to delete stale points", "count", len(stale), "error", err)
		}
		if err := p.chunkRepo.DeleteByIDs(ctx, stale); err != nil {
			return result, fmt.Errorf("failed to delete stale chunks: %w", err)
		}
	}

	p.metrics.RecordIngest(len(chunks))

	result.Chunks = len(chunks)
	result.Stale = len(stale)
	logger.InfoContext(ctx, "ingested filing",
		"ticker", filing.Ticker,
		"filing_type", filing.FilingType,
		"filing_date", filing.FilingDate,
		"chunks", len(chunks),
		"stale_removed", len(stale),
	)
	return result, nil
}

// IngestAll ingests every file; per-file failures are logged and counted
// but do not stop the run.
func (p *Pipeline) IngestAll(ctx context.Context, files []string) (Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting ingestion", "files", len(files))

	var stats Stats
	for _, file := range files {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		stats.Files++
		result, err := p.IngestFile(ctx, file)
		if err != nil {
			stats.Errors++
			logger.ErrorContext(ctx, "failed to ingest file", "file", file, "error", err)
			continue
		}
		stats.Filings++
		stats.Chunks += result.Chunks
	}

	logger.InfoContext(ctx, "ingestion completed",
		"files", stats.Files,
		"filings", stats.Filings,
		"chunks", stats.Chunks,
		"errors", stats.Errors,
	)
	if stats.Errors > 0 {
		return stats, fmt.Errorf("ingestion completed with %d errors", stats.Errors)
	}
	return stats, nil
}

// embedChunks embeds chunk texts in bounded batches.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []filings.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
		vectors = append(vectors, batch...)
	}

	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}
	return vectors, nil
}
