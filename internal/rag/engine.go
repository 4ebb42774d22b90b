// Package rag implements the retrieval-augmented query pipeline over
// indexed SEC filings: filter extraction, embedding retrieval with
// over-fetch, composite rerank, numbered context assembly, answer
// generation, citation resolution, and confidence scoring.
package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks edgar-ai/internal/rag Generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edgar-ai/internal/contextutil"
	"edgar-ai/internal/filings"
	"edgar-ai/internal/llm"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/query"
	"edgar-ai/internal/service"
	"edgar-ai/internal/storage"
	"edgar-ai/internal/vectorstore"
)

const (
	defaultTopK = 5
	maxTopK     = 20
)

// Generator produces an answer from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Engine answers questions about indexed SEC filings.
type Engine interface {
	// Query runs the full pipeline for one question and returns a cited,
	// confidence-scored answer.
	Query(ctx context.Context, req Request) (Response, error)
}

// engine implements the Engine interface.
type engine struct {
	extractor       *query.Extractor
	embedder        Embedder
	vectorStore     vectorstore.VectorStore
	collection      string
	chunkRepo       storage.ChunkStore
	generator       Generator
	model           string
	sectionKeywords map[string][]string
	metrics         *metrics.Metrics
}

// NewEngine creates a query engine.
func NewEngine(
	extractor *query.Extractor,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkRepo storage.ChunkStore,
	generator Generator,
	model string,
	sectionKeywords map[string][]string,
	m *metrics.Metrics,
) Engine {
	return &engine{
		extractor:       extractor,
		embedder:        embedder,
		vectorStore:     vectorStore,
		collection:      collection,
		chunkRepo:       chunkRepo,
		generator:       generator,
		model:           model,
		sectionKeywords: sectionKeywords,
		metrics:         m,
	}
}

// Query answers a question about indexed SEC filings.
func (e *engine) Query(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, status, err := e.query(ctx, req)
	e.metrics.RecordQuery(status, time.Since(start))
	if err == nil {
		e.metrics.RecordRetrieval(resp.ChunksRetrieved, len(resp.Citations))
		e.metrics.ObserveConfidence(resp.Confidence)
	}
	return resp, err
}

func (e *engine) query(ctx context.Context, req Request) (Response, string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Query) == "" {
		return Response{}, metrics.StatusError, &service.ValidationError{Field: "query", Message: "query is required"}
	}

	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}
	if topK < 1 {
		topK = 1
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	filters, queryText := e.extractor.Extract(req.Query)
	if req.Ticker != "" {
		filters.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	}
	if req.FilingType != "" {
		ft, err := filings.ParseFilingType(req.FilingType)
		if err != nil {
			return Response{}, metrics.StatusError, &service.ValidationError{Field: "filing_type", Message: err.Error()}
		}
		filters.FilingType = ft
	}

	logger.InfoContext(ctx, "query started",
		"query", queryText,
		"ticker", filters.Ticker,
		"filing_type", filters.FilingType,
		"fiscal_year", filters.FiscalYear,
		"top_k", topK,
	)

	candidates, retrieved, err := e.retrieve(ctx, queryText, filters, topK)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return Response{}, metrics.StatusError, err
	}

	if len(candidates) == 0 {
		logger.InfoContext(ctx, "no chunks retrieved", "hits", retrieved)
		return Response{
			Query:           queryText,
			Answer:          noDataAnswer,
			Citations:       []Citation{},
			Confidence:      0.0,
			ChunksRetrieved: retrieved,
			ChunksUsed:      0,
			Model:           e.model,
		}, metrics.StatusEmpty, nil
	}

	ranked := rerank(candidates, queryText, topK, e.sectionKeywords)
	contextBlock := assembleContext(ranked)
	prompt := buildPrompt(queryText, contextBlock)

	logger.DebugContext(ctx, "context assembled",
		"candidates", len(candidates),
		"ranked", len(ranked),
		"context_length", len(contextBlock),
	)

	generateStart := time.Now()
	answer, err := e.generator.Generate(ctx, ragSystemPrompt, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return Response{}, metrics.StatusError, classifyExternal(ctx, "failed to generate answer", err)
	}
	e.metrics.RecordStage(metrics.StageGenerate, time.Since(generateStart))

	citations := resolveCitations(answer, ranked)
	confidence := scoreConfidence(ranked, answer, citations)

	logger.InfoContext(ctx, "query completed",
		"chunks_retrieved", retrieved,
		"chunks_used", len(ranked),
		"citations", len(citations),
		"confidence", confidence,
		"answer_length", len(answer),
	)

	return Response{
		Query:           queryText,
		Answer:          answer,
		Citations:       citations,
		Confidence:      confidence,
		ChunksRetrieved: retrieved,
		ChunksUsed:      len(ranked),
		Model:           e.model,
	}, metrics.StatusOK, nil
}

// classifyExternal maps a provider error onto the service sentinels so the
// HTTP layer can pick status codes without knowing provider types.
func classifyExternal(ctx context.Context, msg string, err error) error {
	if isTimeout(ctx, err) {
		return fmt.Errorf("%s: %v: %w", msg, err, service.ErrExternalTimeout)
	}
	return fmt.Errorf("%s: %v: %w", msg, err, service.ErrExternalService)
}

// classifyStore is classifyExternal for the vector store, whose
// non-timeout failures map to ErrStoreUnavailable.
func classifyStore(ctx context.Context, msg string, err error) error {
	if isTimeout(ctx, err) {
		return fmt.Errorf("%s: %v: %w", msg, err, service.ErrExternalTimeout)
	}
	return fmt.Errorf("%s: %v: %w", msg, err, service.ErrStoreUnavailable)
}

func isTimeout(ctx context.Context, err error) bool {
	return llm.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
