package storage

import "time"

// Company represents an indexed company in the database.
type Company struct {
	Ticker    string // Uppercase ticker symbol, primary key
	Name      string // Company name as reported in filings
	CreatedAt time.Time
}

// CompanyCount pairs a company with the number of chunks indexed for it.
type CompanyCount struct {
	Ticker     string
	Name       string
	ChunkCount int
}

// ChunkRecord is an indexed filing chunk row. The vector store holds the
// embedding; this table is the authority for chunk text.
type ChunkRecord struct {
	ID         string // Vector store point ID (UUID)
	ChunkID    string // Readable id: {ticker}_{filing_type}_{filing_date}_{section}_{position}
	Ticker     string
	FilingType string
	FilingDate string // YYYY-MM-DD
	Section    string
	Position   int
	Text       string
}
