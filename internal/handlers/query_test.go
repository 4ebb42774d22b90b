package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edgar-ai/internal/rag"
	"edgar-ai/internal/service"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// mockEngine is a simple mock for testing
type mockEngine struct {
	lastRequest rag.Request
	response    rag.Response
	err         error
}

func (m *mockEngine) reset() {
	m.lastRequest = rag.Request{}
	m.response = rag.Response{}
	m.err = nil
}

func (m *mockEngine) Query(ctx context.Context, req rag.Request) (rag.Response, error) {
	m.lastRequest = req
	if m.err != nil {
		return rag.Response{}, m.err
	}
	return m.response, nil
}

func postQuery(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestQueryHandler_Success(t *testing.T) {
	engine := &mockEngine{}
	engine.response = rag.Response{
		Query:  "What are Apple's risk factors?",
		Answer: "Apple faces supply chain concentration [1] and competitive pressure [2].",
		Citations: []rag.Citation{
			{
				Index:          1,
				ChunkID:        "AAPL_10-K_2024-11-01_item_1a_0",
				Ticker:         "AAPL",
				FilingType:     "10-K",
				FilingDate:     "2024-11-01",
				Section:        "item_1a",
				TextSnippet:    "The Company's business requires...",
				RelevanceScore: 0.91,
			},
			{
				Index:          2,
				ChunkID:        "AAPL_10-K_2024-11-01_item_1a_3",
				Ticker:         "AAPL",
				FilingType:     "10-K",
				FilingDate:     "2024-11-01",
				Section:        "item_1a",
				TextSnippet:    "The markets for the Company's products...",
				RelevanceScore: 0.84,
			},
		},
		Confidence:      0.82,
		ChunksRetrieved: 10,
		ChunksUsed:      5,
		Model:           "test-model",
	}

	handler := NewQueryHandler(engine)

	w := postQuery(t, handler, QueryRequest{Query: "What are Apple's risk factors?"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var resp QueryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Query != engine.response.Query {
		t.Errorf("expected query %q, got %q", engine.response.Query, resp.Query)
	}
	if resp.Answer != engine.response.Answer {
		t.Errorf("expected answer %q, got %q", engine.response.Answer, resp.Answer)
	}
	if resp.Confidence != 0.82 {
		t.Errorf("expected confidence 0.82, got %v", resp.Confidence)
	}
	if resp.ChunksRetrieved != 10 {
		t.Errorf("expected chunks_retrieved 10, got %d", resp.ChunksRetrieved)
	}
	if resp.ChunksUsed != 5 {
		t.Errorf("expected chunks_used 5, got %d", resp.ChunksUsed)
	}
	if resp.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", resp.Model)
	}

	if len(resp.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(resp.Citations))
	}
	first := resp.Citations[0]
	if first.Index != 1 {
		t.Errorf("expected citation index 1, got %d", first.Index)
	}
	if first.ChunkID != "AAPL_10-K_2024-11-01_item_1a_0" {
		t.Errorf("unexpected citation chunk_id %q", first.ChunkID)
	}
	if first.Ticker != "AAPL" || first.FilingType != "10-K" || first.FilingDate != "2024-11-01" {
		t.Errorf("unexpected citation filing fields: %+v", first)
	}
	if first.Section != "item_1a" {
		t.Errorf("expected citation section item_1a, got %q", first.Section)
	}
	if first.RelevanceScore != 0.91 {
		t.Errorf("expected citation relevance 0.91, got %v", first.RelevanceScore)
	}
}

func TestQueryHandler_ForwardsRequest(t *testing.T) {
	engine := &mockEngine{}
	handler := NewQueryHandler(engine)

	tests := []struct {
		name string
		body QueryRequest
		want rag.Request
	}{
		{
			name: "query only",
			body: QueryRequest{Query: "What happened to revenue?"},
			want: rag.Request{Query: "What happened to revenue?"},
		},
		{
			name: "all filters set",
			body: QueryRequest{
				Query:      "Summarize risk factors",
				Ticker:     "MSFT",
				FilingType: "10-Q",
				TopK:       8,
			},
			want: rag.Request{
				Query:      "Summarize risk factors",
				Ticker:     "MSFT",
				FilingType: "10-Q",
				TopK:       8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine.reset()

			w := postQuery(t, handler, tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}

			if engine.lastRequest != tt.want {
				t.Errorf("expected engine request %+v, got %+v", tt.want, engine.lastRequest)
			}
		})
	}
}

func TestQueryHandler_MethodNotAllowed(t *testing.T) {
	handler := NewQueryHandler(&mockEngine{})

	req := httptest.NewRequest(http.MethodGet, "/v1/query", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestQueryHandler_InvalidBody(t *testing.T) {
	handler := NewQueryHandler(&mockEngine{})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "Invalid request body" {
		t.Errorf("expected error %q, got %q", "Invalid request body", resp.Error)
	}
}

func TestQueryHandler_EmptyQuery(t *testing.T) {
	engine := &mockEngine{}
	handler := NewQueryHandler(engine)

	w := postQuery(t, handler, QueryRequest{Query: ""})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "Query is required" {
		t.Errorf("expected error %q, got %q", "Query is required", resp.Error)
	}

	if engine.lastRequest.Query != "" {
		t.Errorf("engine should not be called for empty query, got request %+v", engine.lastRequest)
	}
}

func TestQueryHandler_ErrorMapping(t *testing.T) {
	engine := &mockEngine{}
	handler := NewQueryHandler(engine)

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "validation error",
			err:          &service.ValidationError{Field: "filing_type", Message: "unknown filing type"},
			expectedCode: http.StatusBadRequest,
			expectedBody: "Validation error: validation error on field filing_type: unknown filing type",
		},
		{
			name:         "invalid input",
			err:          fmt.Errorf("parse filters: %w", service.ErrInvalidInput),
			expectedCode: http.StatusBadRequest,
			expectedBody: "Invalid input",
		},
		{
			name:         "not found",
			err:          fmt.Errorf("chunk lookup: %w", service.ErrNotFound),
			expectedCode: http.StatusNotFound,
			expectedBody: "Resource not found",
		},
		{
			name:         "store unavailable maps to 503 not 502",
			err:          fmt.Errorf("search: %w", service.ErrStoreUnavailable),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "Vector store unavailable",
		},
		{
			name:         "external timeout",
			err:          fmt.Errorf("generate: %w", service.ErrExternalTimeout),
			expectedCode: http.StatusGatewayTimeout,
			expectedBody: "External service timeout",
		},
		{
			name:         "external service error",
			err:          fmt.Errorf("embed: %w", service.ErrExternalService),
			expectedCode: http.StatusBadGateway,
			expectedBody: "External service error",
		},
		{
			name:         "unknown error",
			err:          errors.New("something broke"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: "Failed to process query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine.reset()
			engine.err = tt.err

			w := postQuery(t, handler, QueryRequest{Query: "What changed?"})

			if w.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, w.Code)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Error != tt.expectedBody {
				t.Errorf("expected error %q, got %q", tt.expectedBody, resp.Error)
			}
		})
	}
}

func TestQueryHandler_EmptyCitationsRenderAsArray(t *testing.T) {
	engine := &mockEngine{}
	engine.response = rag.Response{
		Query:      "Anything indexed for TSLA?",
		Answer:     "I don't have enough information in the indexed filings to answer this question.",
		Citations:  nil,
		Confidence: 0,
		Model:      "test-model",
	}
	handler := NewQueryHandler(engine)

	w := postQuery(t, handler, QueryRequest{Query: "Anything indexed for TSLA?"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), `"citations":[]`) {
		t.Errorf("expected empty citations array in body, got %s", w.Body.String())
	}
}
