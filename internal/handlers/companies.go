package handlers

import (
	"encoding/json"
	"net/http"

	"edgar-ai/internal/contextutil"
	"edgar-ai/internal/storage"
)

// CompaniesHandler handles HTTP requests for the indexed company list.
type CompaniesHandler struct {
	companyRepo storage.CompanyStore
}

// NewCompaniesHandler creates a new CompaniesHandler.
func NewCompaniesHandler(companyRepo storage.CompanyStore) *CompaniesHandler {
	return &CompaniesHandler{companyRepo: companyRepo}
}

// CompanyResponse represents one indexed company.
//
// swagger:model CompanyResponse
type CompanyResponse struct {
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	ChunkCount int    `json:"chunk_count"`
}

// CompaniesResponse represents the HTTP response payload for the company list.
//
// swagger:model CompaniesResponse
type CompaniesResponse struct {
	Companies   []CompanyResponse `json:"companies"`
	TotalChunks int               `json:"total_chunks"`
}

// ServeHTTP handles HTTP requests for the indexed company list.
//
// swagger:route GET /v1/companies companies
//
// # List indexed companies
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Companies with chunk counts, sorted by ticker
//	  schema:
//	    "$ref": "#/definitions/CompaniesResponse"
//	'500':
//	  description: Internal server error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *CompaniesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	counts, err := h.companyRepo.ListWithCounts(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list companies")
		return
	}

	companies := make([]CompanyResponse, len(counts))
	total := 0
	for i, c := range counts {
		companies[i] = CompanyResponse{
			Ticker:     c.Ticker,
			Name:       c.Name,
			ChunkCount: c.ChunkCount,
		}
		total += c.ChunkCount
	}

	resp := CompaniesResponse{
		Companies:   companies,
		TotalChunks: total,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
}
