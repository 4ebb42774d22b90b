package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"edgar-ai/internal/config"
	"edgar-ai/internal/http"
	"edgar-ai/internal/llm"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/policy"
	"edgar-ai/internal/query"
	"edgar-ai/internal/rag"
	"edgar-ai/internal/storage"
	"edgar-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers natural-language questions about indexed SEC filings
// using retrieval-augmented generation over filing chunks.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: EDGAR AI API
//   description: |
//     RAG (Retrieval-Augmented Generation) API for querying indexed SEC
//     filings. Ask questions about 10-K, 10-Q and 8-K filings and get
//     answers with citations back to the filing sections they came from.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	companyRepo := storage.NewCompanyRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	if info, err := vectorStore.GetCollectionInfo(ctx, cfg.QdrantCollection); err != nil {
		slog.Warn("Failed to read collection info", "collection", cfg.QdrantCollection, "error", err)
	} else {
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", info.VectorSize, "points", info.PointsCount, "status", info.Status)
	}

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Load recognition policy (ticker aliases, section keywords)
	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		log.Fatalf("Failed to load policy: %v", err)
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatalf("ANTHROPIC_API_KEY is required")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Query embeddings are cached so repeated questions skip the API
	cachedEmbedder := llm.NewCachedEmbedder(embedder, llm.NewMemoryCache())

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicMaxTokens)

	// Create RAG engine
	ragEngine := rag.NewEngine(
		query.NewExtractor(pol.TickerAliases),
		cachedEmbedder,
		vectorStore,
		cfg.QdrantCollection,
		chunkRepo,
		llmClient,
		cfg.AnthropicModel,
		pol.SectionKeywords,
		m,
	)
	slog.Info("RAG engine initialized", "model", cfg.AnthropicModel)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:      ragEngine,
		CompanyRepo: companyRepo,
		DB:          db,
		VectorStore: vectorStore,
		Metrics:     m,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.AnthropicBaseURL, "model", cfg.AnthropicModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
