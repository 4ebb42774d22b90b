// Package query turns free-text questions into structured retrieval filters.
// Recognition favors recall over false positives: a wrong filter silently
// narrows retrieval, so anything short of a confident match is ignored.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"edgar-ai/internal/filings"
)

// Filters are the optional constraints recognized in a question. Zero
// values mean "search all".
type Filters struct {
	Ticker     string             `json:"ticker,omitempty"`
	FilingType filings.FilingType `json:"filing_type,omitempty"`
	FiscalYear int                `json:"fiscal_year,omitempty"`
}

// IsZero reports whether no filter was recognized.
func (f Filters) IsZero() bool {
	return f.Ticker == "" && f.FilingType == "" && f.FiscalYear == 0
}

var (
	tickerPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
	yearPattern   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	fyYearPattern = regexp.MustCompile(`(?i)\bfy\s*((?:19|20)\d{2})\b`)
	formPattern   = regexp.MustCompile(`(?i)\b(10-k|10k|10-q|10q|8-k|8k)\b`)

	// Uppercase tokens that look like tickers but never are ones in a
	// question about filings.
	tickerStopwords = map[string]struct{}{
		"A": {}, "I": {}, "AND": {}, "THE": {}, "FOR": {}, "OR": {},
		"IN": {}, "TO": {}, "FY": {}, "SEC": {},
	}

	filingTypePatterns = []struct {
		pattern *regexp.Regexp
		ft      filings.FilingType
	}{
		{regexp.MustCompile(`\b(10-k|10k|annual report|annual)\b`), filings.FilingType10K},
		{regexp.MustCompile(`\b(10-q|10q|quarterly report|quarterly)\b`), filings.FilingType10Q},
		{regexp.MustCompile(`\b(8-k|8k|current report)\b`), filings.FilingType8K},
	}
)

// Extractor recognizes filters in free-text questions.
type Extractor struct {
	aliases map[string]string
}

// NewExtractor creates an extractor with the given company-name alias table
// (lowercase name → ticker).
func NewExtractor(aliases map[string]string) *Extractor {
	return &Extractor{aliases: aliases}
}

// Extract parses a question into Filters and the normalized query text.
// It never fails: unrecognized input yields zero filters and the question
// trimmed of surrounding whitespace, which is the only normalization.
func (e *Extractor) Extract(question string) (Filters, string) {
	normalized := strings.TrimSpace(question)
	lower := strings.ToLower(normalized)

	filters := Filters{
		Ticker:     e.extractTicker(normalized, lower),
		FilingType: extractFilingType(lower),
		FiscalYear: extractFiscalYear(normalized),
	}
	return filters, normalized
}

// extractTicker looks for an exact uppercase ticker token first, then for a
// whole-word company-name alias. Ambiguous tokens resolve to no filter.
// Filing form mentions are scrubbed first so the K in "10-K" is never read
// as a ticker.
func (e *Extractor) extractTicker(raw, lower string) string {
	scrubbed := formPattern.ReplaceAllString(raw, " ")
	for _, candidate := range tickerPattern.FindAllString(scrubbed, -1) {
		if _, stop := tickerStopwords[candidate]; stop {
			continue
		}
		return candidate
	}

	for _, token := range tokenize(lower) {
		if ticker, ok := e.aliases[token]; ok {
			return ticker
		}
	}
	return ""
}

func extractFilingType(lower string) filings.FilingType {
	for _, entry := range filingTypePatterns {
		if entry.pattern.MatchString(lower) {
			return entry.ft
		}
	}
	return ""
}

// extractFiscalYear picks an FY-prefixed year first, then the first
// plausible bare four-digit year. Relative phrases ("last year") are
// deliberately not interpreted.
func extractFiscalYear(raw string) int {
	if m := fyYearPattern.FindStringSubmatch(raw); m != nil {
		if year := plausibleYear(m[1]); year != 0 {
			return year
		}
	}
	for _, match := range yearPattern.FindAllString(raw, -1) {
		if year := plausibleYear(match); year != 0 {
			return year
		}
	}
	return 0
}

// plausibleYear parses a year string and rejects values outside the window
// where EDGAR electronic filings exist; anything else is more likely a
// figure from the question than a fiscal year.
func plausibleYear(s string) int {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1994 || year > 2035 {
		return 0
	}
	return year
}

// tokenize lowers and splits text into letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		isLetter := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		return !isLetter && !isDigit
	})
}
