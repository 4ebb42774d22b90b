package rag

// Request represents a question about indexed SEC filings.
type Request struct {
	// Query is the natural-language question to answer.
	Query string `json:"query"`
	// Ticker optionally restricts retrieval to one company. Overrides any
	// ticker recognized in the query text.
	Ticker string `json:"ticker,omitempty"`
	// FilingType optionally restricts retrieval to one filing type
	// (10-K, 10-Q, 8-K). Overrides any type recognized in the query text.
	FilingType string `json:"filing_type,omitempty"`
	// TopK is the desired number of context chunks. Defaults to 5,
	// clamped to [1, 20].
	TopK int `json:"top_k,omitempty"`
}

// Candidate is a retrieved chunk with its similarity distance.
// Lower distance means a closer match.
type Candidate struct {
	ChunkID    string
	Ticker     string
	FilingType string
	FilingDate string
	Section    string
	Position   int
	Text       string
	Distance   float64
}

// Citation ties one [n] marker in the answer to its source chunk.
type Citation struct {
	// Index is the 1-based context position the marker referenced.
	Index int `json:"index"`
	// ChunkID is the stable chunk identifier.
	ChunkID string `json:"chunk_id"`
	// Ticker, FilingType, FilingDate, and Section identify the filing.
	Ticker     string `json:"ticker"`
	FilingType string `json:"filing_type"`
	FilingDate string `json:"filing_date"`
	Section    string `json:"section"`
	// TextSnippet is the first 200 characters of the chunk text.
	TextSnippet string `json:"text_snippet"`
	// RelevanceScore is 1 - clamp(distance, 0, 1).
	RelevanceScore float64 `json:"relevance_score"`
}

// Response is the assembled answer for one query.
type Response struct {
	// Query is the normalized question that was answered.
	Query string `json:"query"`
	// Answer is the generated answer text with [n] citation markers.
	Answer string `json:"answer"`
	// Citations are the sources referenced by the answer, in the order
	// the answer first mentions them.
	Citations []Citation `json:"citations"`
	// Confidence is a 0-1 estimate of answer reliability.
	Confidence float64 `json:"confidence"`
	// ChunksRetrieved is the raw hit count before reranking.
	ChunksRetrieved int `json:"chunks_retrieved"`
	// ChunksUsed is the number of chunks in the generation context.
	ChunksUsed int `json:"chunks_used"`
	// Model is the LLM that generated the answer.
	Model string `json:"model"`
}
