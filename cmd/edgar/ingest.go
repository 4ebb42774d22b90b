package main

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"edgar-ai/internal/ingest"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
)

var ingestIncludes []string

// ingester indexes parsed filing files. Built on demand; tests pre-set it.
type ingester interface {
	IngestFile(ctx context.Context, path string) (ingest.FilingResult, error)
}

var filingIngester ingester

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest parsed filing JSON files into the index",
	Long: `Chunks, embeds and indexes parsed filing JSON files. A path that is a
directory is walked recursively; --include narrows the walk to files
matching the given glob pattern(s). Re-ingesting a filing replaces its
previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringArrayVar(&ingestIncludes, "include", nil, "glob pattern(s) selecting files to ingest, e.g. '**/aapl_*.json'")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := ingest.Scan(ctx, args, ingestIncludes)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("No filing files matched.")
		return nil
	}

	ing := filingIngester
	if ing == nil {
		built, cleanup, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		ing = built
	}

	bar := newIngestBar(len(files))

	var stats ingest.Stats
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		stats.Files++
		result, err := ing.IngestFile(ctx, file)
		if err != nil {
			stats.Errors++
			cmd.PrintErrf("%s: %v\n", file, err)
		} else {
			stats.Filings++
			stats.Chunks += result.Chunks
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	cmd.Printf("Ingested %d filings (%d chunks) from %d files\n", stats.Filings, stats.Chunks, stats.Files)
	if stats.Errors > 0 {
		return fmt.Errorf("%d files failed", stats.Errors)
	}
	return nil
}

// buildPipeline assembles the ingestion pipeline. The returned cleanup
// closes the database.
func buildPipeline(ctx context.Context) (*ingest.Pipeline, func(), error) {
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

	pipeline := ingest.NewPipeline(
		buildEmbedder(),
		storage.NewCompanyRepo(db),
		storage.NewChunkRepo(db),
		vectorStore,
		cfg.QdrantCollection,
		metrics.New(prometheus.NewRegistry()),
	)
	return pipeline, cleanup, nil
}

// newIngestBar renders progress on stderr when it is a terminal and stays
// silent otherwise.
func newIngestBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("ingesting"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
