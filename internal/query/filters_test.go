package query

import (
	"testing"

	"edgar-ai/internal/filings"
	"edgar-ai/internal/policy"
)

func newTestExtractor() *Extractor {
	return NewExtractor(policy.Default().TickerAliases)
}

func TestExtract(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name     string
		question string
		want     Filters
	}{
		{
			name:     "explicit ticker token",
			question: "What does AAPL say about supply chain risk?",
			want:     Filters{Ticker: "AAPL"},
		},
		{
			name:     "company alias",
			question: "What was Apple's revenue in fiscal 2023?",
			want:     Filters{Ticker: "AAPL", FiscalYear: 2023},
		},
		{
			name:     "alias plus annual report",
			question: "Summarize Microsoft's annual report",
			want:     Filters{Ticker: "MSFT", FilingType: filings.FilingType10K},
		},
		{
			name:     "quarterly filing type",
			question: "latest quarterly results for NVDA",
			want:     Filters{Ticker: "NVDA", FilingType: filings.FilingType10Q},
		},
		{
			name:     "explicit 10-K token",
			question: "tesla 10-K risk factors",
			want:     Filters{Ticker: "TSLA", FilingType: filings.FilingType10K},
		},
		{
			name:     "current report",
			question: "any current report from Amazon this year?",
			want:     Filters{Ticker: "AMZN", FilingType: filings.FilingType8K},
		},
		{
			name:     "fy prefixed year",
			question: "How did Meta perform in FY2022?",
			want:     Filters{Ticker: "META", FiscalYear: 2022},
		},
		{
			name:     "no recognizable filters",
			question: "how is the outlook described?",
			want:     Filters{},
		},
		{
			name:     "form letters are not tickers",
			question: "what does the 10-K say about margins?",
			want:     Filters{FilingType: filings.FilingType10K},
		},
		{
			name:     "stopword tokens skipped",
			question: "Is A 10-Q due FOR GOOGL IN March?",
			want:     Filters{Ticker: "GOOGL", FilingType: filings.FilingType10Q},
		},
		{
			name:     "year outside plausible window ignored",
			question: "compare 1950 segment data",
			want:     Filters{},
		},
		{
			name:     "substring of alias does not match",
			question: "pineapple harvest report",
			want:     Filters{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := extractor.Extract(tt.question)
			if got.Ticker != tt.want.Ticker {
				t.Errorf("Ticker = %q, want %q", got.Ticker, tt.want.Ticker)
			}
			if got.FilingType != tt.want.FilingType {
				t.Errorf("FilingType = %q, want %q", got.FilingType, tt.want.FilingType)
			}
			if got.FiscalYear != tt.want.FiscalYear {
				t.Errorf("FiscalYear = %d, want %d", got.FiscalYear, tt.want.FiscalYear)
			}
		})
	}
}

func TestExtractNormalizesWhitespaceOnly(t *testing.T) {
	extractor := newTestExtractor()

	_, normalized := extractor.Extract("  What was Apple's revenue?  ")
	if normalized != "What was Apple's revenue?" {
		t.Errorf("normalized = %q", normalized)
	}
}

func TestExtractNeverFails(t *testing.T) {
	extractor := newTestExtractor()

	for _, question := range []string{"", "   ", "?!?", "1234567890"} {
		filters, normalized := extractor.Extract(question)
		if !filters.IsZero() {
			t.Errorf("Extract(%q) filters = %+v, want zero", question, filters)
		}
		_ = normalized
	}
}
