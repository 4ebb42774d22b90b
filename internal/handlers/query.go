package handlers

import (
	"encoding/json"
	"net/http"

	"edgar-ai/internal/contextutil"
	"edgar-ai/internal/rag"
)

// QueryHandler handles HTTP requests for filing questions.
type QueryHandler struct {
	engine rag.Engine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(engine rag.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest represents the HTTP request payload for filing questions.
// This mirrors rag.Request but is defined here for HTTP layer separation.
//
// swagger:model QueryRequest
type QueryRequest struct {
	Query      string `json:"query"`
	Ticker     string `json:"ticker,omitempty"`
	FilingType string `json:"filing_type,omitempty"`
	TopK       int    `json:"top_k,omitempty"`
}

// QueryResponse represents the HTTP response payload for filing questions.
//
// swagger:model QueryResponse
type QueryResponse struct {
	// The normalized question that was answered
	Query string `json:"query"`

	// The generated answer with [n] citation markers
	Answer string `json:"answer"`

	// Sources referenced by the answer, in first-mention order
	Citations []CitationResponse `json:"citations"`

	// 0-1 estimate of answer reliability
	Confidence float64 `json:"confidence"`

	// Raw hit count before reranking
	ChunksRetrieved int `json:"chunks_retrieved"`

	// Number of chunks in the generation context
	ChunksUsed int `json:"chunks_used"`

	// The model that generated the answer
	Model string `json:"model"`
}

// CitationResponse represents one answer citation.
//
// swagger:model CitationResponse
type CitationResponse struct {
	Index          int     `json:"index"`
	ChunkID        string  `json:"chunk_id"`
	Ticker         string  `json:"ticker"`
	FilingType     string  `json:"filing_type"`
	FilingDate     string  `json:"filing_date"`
	Section        string  `json:"section"`
	TextSnippet    string  `json:"text_snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ServeHTTP handles HTTP requests for filing questions.
//
// Ask a question about indexed SEC filings. The system retrieves relevant
// filing passages, generates an answer citing them, and reports a
// confidence estimate.
//
// swagger:route POST /v1/query query
//
// # Query indexed filings
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer with citations and confidence
//	  schema:
//	    "$ref": "#/definitions/QueryResponse"
//	'400':
//	  description: Missing query or unknown filing type
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding or LLM service error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Vector store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'504':
//	  description: External service timeout
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Query == "" {
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	ragResp, err := h.engine.Query(ctx, rag.Request{
		Query:      req.Query,
		Ticker:     req.Ticker,
		FilingType: req.FilingType,
		TopK:       req.TopK,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process query")
		return
	}

	citations := make([]CitationResponse, len(ragResp.Citations))
	for i, c := range ragResp.Citations {
		citations[i] = CitationResponse{
			Index:          c.Index,
			ChunkID:        c.ChunkID,
			Ticker:         c.Ticker,
			FilingType:     c.FilingType,
			FilingDate:     c.FilingDate,
			Section:        c.Section,
			TextSnippet:    c.TextSnippet,
			RelevanceScore: c.RelevanceScore,
		}
	}

	resp := QueryResponse{
		Query:           ragResp.Query,
		Answer:          ragResp.Answer,
		Citations:       citations,
		Confidence:      ragResp.Confidence,
		ChunksRetrieved: ragResp.ChunksRetrieved,
		ChunksUsed:      ragResp.ChunksUsed,
		Model:           ragResp.Model,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
}
