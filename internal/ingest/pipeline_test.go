package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edgar-ai/internal/filings"
	ingest_mocks "edgar-ai/internal/ingest/mocks"
	"edgar-ai/internal/metrics"
	"edgar-ai/internal/storage"
	storage_mocks "edgar-ai/internal/storage/mocks"
	"edgar-ai/internal/vectorstore"
	vectorstore_mocks "edgar-ai/internal/vectorstore/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const testFilingDate = "2024-11-01"

// Section fixtures long enough to clear the chunker's minimum size while
// still producing exactly one chunk per section.
var (
	riskSectionText = strings.Repeat("Competition in the smartphone market could reduce demand for our products. ", 3)
	mdaSectionText  = strings.Repeat("Revenue increased due to strong services growth and higher iPhone sales. ", 3)
)

type pipelineMocks struct {
	embedder    *ingest_mocks.MockEmbedder
	companyRepo *storage_mocks.MockCompanyStore
	chunkRepo   *storage_mocks.MockChunkStore
	vectorStore *vectorstore_mocks.MockVectorStore
}

func newTestPipeline(ctrl *gomock.Controller) (*Pipeline, pipelineMocks) {
	m := pipelineMocks{
		embedder:    ingest_mocks.NewMockEmbedder(ctrl),
		companyRepo: storage_mocks.NewMockCompanyStore(ctrl),
		chunkRepo:   storage_mocks.NewMockChunkStore(ctrl),
		vectorStore: vectorstore_mocks.NewMockVectorStore(ctrl),
	}
	pipeline := NewPipeline(
		m.embedder,
		m.companyRepo,
		m.chunkRepo,
		m.vectorStore,
		"test-collection",
		metrics.New(prometheus.NewRegistry()),
	)
	return pipeline, m
}

func writeParsedFiling(t *testing.T, dir, name string, sections map[string]string) string {
	t.Helper()
	payload := map[string]any{
		"ticker":       "AAPL",
		"company_name": "Apple Inc.",
		"filing_type":  "10-K",
		"filing_date":  testFilingDate,
		"sections":     sections,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal filing: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write filing: %v", err)
	}
	return path
}

func TestNewPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, _ := newTestPipeline(ctrl)

	if pipeline == nil {
		t.Fatal("NewPipeline() returned nil")
	}
	if pipeline.chunker == nil {
		t.Error("NewPipeline() chunker should not be nil")
	}
	if pipeline.collection != "test-collection" {
		t.Errorf("NewPipeline() collection = %v, want test-collection", pipeline.collection)
	}
}

func TestPipeline_IngestFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newTestPipeline(ctrl)
	path := writeParsedFiling(t, t.TempDir(), "aapl_10k.json", map[string]string{
		"item_1a": riskSectionText,
		"item_7":  mdaSectionText,
	})

	// Sections chunk in sorted name order, so item_1a comes first.
	wantChunkIDs := []string{
		"AAPL_10-K_2024-11-01_item_1a_0",
		"AAPL_10-K_2024-11-01_item_7_0",
	}
	wantPointIDs := []string{
		filings.PointID(wantChunkIDs[0]),
		filings.PointID(wantChunkIDs[1]),
	}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	m.companyRepo.EXPECT().Upsert(gomock.Any(), "AAPL", "Apple Inc.").Return(nil)
	m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), "AAPL", "10-K", testFilingDate).Return(nil, nil)
	m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, texts []string) ([][]float32, error) {
			if len(texts) != 2 {
				return nil, fmt.Errorf("got %d texts, want 2", len(texts))
			}
			if !strings.Contains(texts[0], "Competition") {
				t.Errorf("EmbedTexts() texts[0] = %q, want item_1a text", texts[0])
			}
			if !strings.Contains(texts[1], "Revenue") {
				t.Errorf("EmbedTexts() texts[1] = %q, want item_7 text", texts[1])
			}
			return vectors, nil
		})

	var gotRecords []*storage.ChunkRecord
	m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, records []*storage.ChunkRecord) error {
			gotRecords = records
			return nil
		})

	var gotPoints []vectorstore.Point
	m.vectorStore.EXPECT().Upsert(gomock.Any(), "test-collection", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, points []vectorstore.Point) error {
			gotPoints = points
			return nil
		})

	result, err := pipeline.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	if result.Ticker != "AAPL" {
		t.Errorf("IngestFile() ticker = %v, want AAPL", result.Ticker)
	}
	if result.FilingType != "10-K" {
		t.Errorf("IngestFile() filing type = %v, want 10-K", result.FilingType)
	}
	if result.FilingDate != testFilingDate {
		t.Errorf("IngestFile() filing date = %v, want %v", result.FilingDate, testFilingDate)
	}
	if result.Chunks != 2 {
		t.Errorf("IngestFile() chunks = %d, want 2", result.Chunks)
	}
	if result.Stale != 0 {
		t.Errorf("IngestFile() stale = %d, want 0", result.Stale)
	}

	if len(gotRecords) != 2 {
		t.Fatalf("chunk upsert got %d records, want 2", len(gotRecords))
	}
	for i, record := range gotRecords {
		if record.ID != wantPointIDs[i] {
			t.Errorf("records[%d].ID = %v, want %v", i, record.ID, wantPointIDs[i])
		}
		if record.ChunkID != wantChunkIDs[i] {
			t.Errorf("records[%d].ChunkID = %v, want %v", i, record.ChunkID, wantChunkIDs[i])
		}
		if record.Ticker != "AAPL" || record.FilingType != "10-K" || record.FilingDate != testFilingDate {
			t.Errorf("records[%d] filing fields = %v/%v/%v", i, record.Ticker, record.FilingType, record.FilingDate)
		}
		if record.Position != 0 {
			t.Errorf("records[%d].Position = %d, want 0", i, record.Position)
		}
	}
	if gotRecords[0].Section != "item_1a" || gotRecords[1].Section != "item_7" {
		t.Errorf("record sections = %v/%v, want item_1a/item_7", gotRecords[0].Section, gotRecords[1].Section)
	}

	if len(gotPoints) != 2 {
		t.Fatalf("vector upsert got %d points, want 2", len(gotPoints))
	}
	for i, point := range gotPoints {
		if point.ID != wantPointIDs[i] {
			t.Errorf("points[%d].ID = %v, want %v", i, point.ID, wantPointIDs[i])
		}
		if len(point.Vec) != 2 || point.Vec[0] != vectors[i][0] {
			t.Errorf("points[%d].Vec = %v, want %v", i, point.Vec, vectors[i])
		}
		if point.Meta[filings.PayloadTicker] != "AAPL" {
			t.Errorf("points[%d] ticker payload = %v, want AAPL", i, point.Meta[filings.PayloadTicker])
		}
	}
	if gotPoints[0].Meta[filings.PayloadSection] != "item_1a" {
		t.Errorf("points[0] section payload = %v, want item_1a", gotPoints[0].Meta[filings.PayloadSection])
	}
}

func TestPipeline_IngestFile_RemovesStaleChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newTestPipeline(ctrl)
	path := writeParsedFiling(t, t.TempDir(), "aapl_10k.json", map[string]string{
		"item_1a": riskSectionText,
		"item_7":  mdaSectionText,
	})

	keptIDs := []string{
		filings.PointID("AAPL_10-K_2024-11-01_item_1a_0"),
		filings.PointID("AAPL_10-K_2024-11-01_item_7_0"),
	}
	// Chunks from an earlier parse that the new parse no longer produces.
	staleIDs := []string{
		filings.PointID("AAPL_10-K_2024-11-01_item_7_1"),
		filings.PointID("AAPL_10-K_2024-11-01_item_7a_0"),
	}
	oldIDs := []string{keptIDs[0], staleIDs[0], keptIDs[1], staleIDs[1]}

	m.companyRepo.EXPECT().Upsert(gomock.Any(), "AAPL", "Apple Inc.").Return(nil)
	m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), "AAPL", "10-K", testFilingDate).Return(oldIDs, nil)
	m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}, {0.2}}, nil)
	m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	m.vectorStore.EXPECT().Upsert(gomock.Any(), "test-collection", gomock.Any()).Return(nil)
	m.vectorStore.EXPECT().Delete(gomock.Any(), "test-collection", staleIDs).Return(nil)
	m.chunkRepo.EXPECT().DeleteByIDs(gomock.Any(), staleIDs).Return(nil)

	result, err := pipeline.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}
	if result.Chunks != 2 {
		t.Errorf("IngestFile() chunks = %d, want 2", result.Chunks)
	}
	if result.Stale != 2 {
		t.Errorf("IngestFile() stale = %d, want 2", result.Stale)
	}
}

func TestPipeline_IngestFile_VectorDeleteFailureIsNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newTestPipeline(ctrl)
	path := writeParsedFiling(t, t.TempDir(), "aapl_10k.json", map[string]string{
		"item_7": mdaSectionText,
	})

	staleIDs := []string{filings.PointID("AAPL_10-K_2024-11-01_item_7_1")}
	oldIDs := append([]string{filings.PointID("AAPL_10-K_2024-11-01_item_7_0")}, staleIDs...)

	m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(oldIDs, nil)
	m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}}, nil)
	m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	m.vectorStore.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.vectorStore.EXPECT().Delete(gomock.Any(), "test-collection", staleIDs).Return(errors.New("qdrant unavailable"))
	m.chunkRepo.EXPECT().DeleteByIDs(gomock.Any(), staleIDs).Return(nil)

	result, err := pipeline.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile() error = %v, want nil when only the point delete fails", err)
	}
	if result.Stale != 1 {
		t.Errorf("IngestFile() stale = %d, want 1", result.Stale)
	}
}

func TestPipeline_IngestFile_NoChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Below the chunker's minimum size, so nothing gets indexed and no
	// store is touched.
	pipeline, _ := newTestPipeline(ctrl)
	path := writeParsedFiling(t, t.TempDir(), "aapl_10k.json", map[string]string{
		"item_7": "Too short to index.",
	})

	result, err := pipeline.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}
	if result.Chunks != 0 {
		t.Errorf("IngestFile() chunks = %d, want 0", result.Chunks)
	}
}

func TestPipeline_IngestFile_InvalidFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed json",
			content: "{not json",
			wantErr: "failed to decode parsed filing",
		},
		{
			name:    "unknown filing type",
			content: `{"ticker":"AAPL","company_name":"Apple Inc.","filing_type":"S-1","filing_date":"2024-11-01","sections":{"item_1":"x"}}`,
			wantErr: "unknown filing type",
		},
		{
			name:    "missing filing date",
			content: `{"ticker":"AAPL","company_name":"Apple Inc.","filing_type":"10-K","filing_date":"","sections":{"item_1":"x"}}`,
			wantErr: "invalid filing date",
		},
		{
			name:    "missing ticker",
			content: `{"ticker":"  ","company_name":"Apple Inc.","filing_type":"10-K","filing_date":"2024-11-01","sections":{"item_1":"x"}}`,
			wantErr: "missing ticker",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pipeline, _ := newTestPipeline(ctrl)
			path := filepath.Join(tmpDir, fmt.Sprintf("filing_%d.json", i))
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}

			_, err := pipeline.IngestFile(context.Background(), path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("IngestFile() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPipeline_IngestFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m pipelineMocks)
		wantErr string
	}{
		{
			name: "company upsert fails",
			setup: func(m pipelineMocks) {
				m.companyRepo.EXPECT().Upsert(gomock.Any(), "AAPL", "Apple Inc.").Return(errors.New("database is locked"))
			},
			wantErr: "failed to register company",
		},
		{
			name: "listing existing chunks fails",
			setup: func(m pipelineMocks) {
				m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database is locked"))
			},
			wantErr: "failed to list existing chunks",
		},
		{
			name: "embedding fails",
			setup: func(m pipelineMocks) {
				m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errors.New("service unavailable"))
			},
			wantErr: "failed to embed chunks",
		},
		{
			name: "embedding count mismatch",
			setup: func(m pipelineMocks) {
				m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}}, nil)
			},
			wantErr: "embedding count mismatch",
		},
		{
			name: "chunk upsert fails",
			setup: func(m pipelineMocks) {
				m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}, {0.2}}, nil)
				m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("database is locked"))
			},
			wantErr: "failed to store chunks",
		},
		{
			name: "vector upsert fails",
			setup: func(m pipelineMocks) {
				m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}, {0.2}}, nil)
				m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
				m.vectorStore.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("qdrant unavailable"))
			},
			wantErr: "failed to index chunks",
		},
		{
			name: "stale registry delete fails",
			setup: func(m pipelineMocks) {
				stale := []string{filings.PointID("AAPL_10-K_2024-11-01_item_9_0")}
				m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(stale, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}, {0.2}}, nil)
				m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
				m.vectorStore.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.vectorStore.EXPECT().Delete(gomock.Any(), gomock.Any(), stale).Return(nil)
				m.chunkRepo.EXPECT().DeleteByIDs(gomock.Any(), stale).Return(errors.New("database is locked"))
			},
			wantErr: "failed to delete stale chunks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pipeline, m := newTestPipeline(ctrl)
			path := writeParsedFiling(t, t.TempDir(), "aapl_10k.json", map[string]string{
				"item_1a": riskSectionText,
				"item_7":  mdaSectionText,
			})
			tt.setup(m)

			_, err := pipeline.IngestFile(context.Background(), path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("IngestFile() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPipeline_IngestFiling_BatchesEmbeddings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newTestPipeline(ctrl)

	// Enough near-target-size paragraphs that the chunk count exceeds one
	// embedding batch.
	paragraph := strings.Repeat("Net sales by segment were materially higher than in the prior fiscal year. ", 18)
	var section strings.Builder
	for i := 0; i < 110; i++ {
		fmt.Fprintf(&section, "Paragraph %d. %s\n\n", i, paragraph)
	}
	path := writeParsedFiling(t, t.TempDir(), "aapl_10k.json", map[string]string{
		"item_7": section.String(),
	})

	m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	var batchSizes []int
	m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, texts []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(texts))
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = []float32{0.1, 0.2}
			}
			return out, nil
		}).Times(2)
	m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	m.vectorStore.EXPECT().Upsert(gomock.Any(), "test-collection", gomock.Any()).Return(nil)

	result, err := pipeline.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	if result.Chunks <= embedBatchSize {
		t.Fatalf("IngestFile() chunks = %d, want more than one batch (%d)", result.Chunks, embedBatchSize)
	}
	if len(batchSizes) != 2 {
		t.Fatalf("EmbedTexts() called %d times, want 2", len(batchSizes))
	}
	if batchSizes[0] != embedBatchSize {
		t.Errorf("first batch size = %d, want %d", batchSizes[0], embedBatchSize)
	}
	if batchSizes[0]+batchSizes[1] != result.Chunks {
		t.Errorf("batch sizes %v do not sum to chunk count %d", batchSizes, result.Chunks)
	}
}

func TestPipeline_IngestAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, m := newTestPipeline(ctrl)
	tmpDir := t.TempDir()

	goodPath := writeParsedFiling(t, tmpDir, "aapl_10k.json", map[string]string{
		"item_1a": riskSectionText,
		"item_7":  mdaSectionText,
	})
	badPath := filepath.Join(tmpDir, "broken.json")
	if err := os.WriteFile(badPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	m.companyRepo.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	m.chunkRepo.EXPECT().ListIDsByFiling(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}, {0.2}}, nil)
	m.chunkRepo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	m.vectorStore.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	stats, err := pipeline.IngestAll(context.Background(), []string{goodPath, badPath})
	if err == nil || !strings.Contains(err.Error(), "ingestion completed with 1 errors") {
		t.Errorf("IngestAll() error = %v, want completion error", err)
	}

	if stats.Files != 2 {
		t.Errorf("IngestAll() files = %d, want 2", stats.Files)
	}
	if stats.Filings != 1 {
		t.Errorf("IngestAll() filings = %d, want 1", stats.Filings)
	}
	if stats.Chunks != 2 {
		t.Errorf("IngestAll() chunks = %d, want 2", stats.Chunks)
	}
	if stats.Errors != 1 {
		t.Errorf("IngestAll() errors = %d, want 1", stats.Errors)
	}
}

func TestPipeline_IngestAll_ContextCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, _ := newTestPipeline(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := pipeline.IngestAll(ctx, []string{"unused.json"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("IngestAll() error = %v, want context.Canceled", err)
	}
	if stats.Files != 0 {
		t.Errorf("IngestAll() files = %d, want 0", stats.Files)
	}
}
