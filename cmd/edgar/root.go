package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"edgar-ai/internal/config"
	"edgar-ai/internal/llm"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/policy"
	"edgar-ai/internal/query"
	"edgar-ai/internal/rag"
	"edgar-ai/internal/service"
	"edgar-ai/internal/storage"
	"edgar-ai/internal/vectorstore"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "edgar",
	Short: "Query and manage a local SEC filing index",
	Long: `edgar ingests parsed SEC filings into a local index and answers
natural-language questions about them, with citations back to the filing
sections each answer came from.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// setup loads configuration and routes logs to stderr so command output
// stays pipeable.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = c

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// openDatabase opens the chunk registry and runs migrations.
func openDatabase() (*sql.DB, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// buildVectorStore connects to Qdrant and ensures the collection exists.
func buildVectorStore(ctx context.Context) (*vectorstore.QdrantStore, error) {
	store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		return nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	return store, nil
}

func buildEmbedder() *llm.EmbeddingsClient {
	return llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
}

func buildGenerator() (*llm.Client, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return llm.NewClient(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicMaxTokens), nil
}

// buildQueryEngine assembles the full query pipeline. The returned cleanup
// closes the database.
func buildQueryEngine(ctx context.Context) (rag.Engine, func(), error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = db.Close() }

	vectorStore, err := buildVectorStore(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load policy: %w", err)
	}

	generator, err := buildGenerator()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Query embeddings are cached so repeated questions skip the API
	embedder := llm.NewCachedEmbedder(buildEmbedder(), llm.NewMemoryCache())

	engine := rag.NewEngine(
		query.NewExtractor(pol.TickerAliases),
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		storage.NewChunkRepo(db),
		generator,
		cfg.AnthropicModel,
		pol.SectionKeywords,
		metrics.New(prometheus.NewRegistry()),
	)
	return engine, cleanup, nil
}

// buildExtractor assembles the structured-extraction service. The returned
// cleanup closes the database.
func buildExtractor() (service.Extractor, func(), error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = db.Close() }

	generator, err := buildGenerator()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return service.NewExtractor(storage.NewChunkRepo(db), generator, cfg.AnthropicModel), cleanup, nil
}
