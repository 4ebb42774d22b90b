package ingest

// FilingResult summarizes one ingested filing.
type FilingResult struct {
	Ticker     string
	FilingType string
	FilingDate string
	Chunks     int
	// Stale is how many previously indexed chunks of this filing no
	// longer exist in the new parse and were removed.
	Stale int
}

// Stats summarizes one ingestion run over many files.
type Stats struct {
	Files   int
	Filings int
	Chunks  int
	Errors  int
}
