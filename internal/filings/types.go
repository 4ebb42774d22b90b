package filings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FilingType identifies the SEC form a document came from.
type FilingType string

const (
	FilingType10K FilingType = "10-K"
	FilingType10Q FilingType = "10-Q"
	FilingType8K  FilingType = "8-K"
)

// ParseFilingType normalizes a user-supplied filing type string.
// Accepts "10-K", "10k", "10Q", etc. Returns an error for unknown forms.
func ParseFilingType(s string) (FilingType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "")
	switch normalized {
	case "10K":
		return FilingType10K, nil
	case "10Q":
		return FilingType10Q, nil
	case "8K":
		return FilingType8K, nil
	default:
		return "", fmt.Errorf("unknown filing type: %q", s)
	}
}

// knownSections enumerates the 10-K item names the upstream parser emits.
// 10-Q and 8-K sections reuse a subset of these names.
var knownSections = map[string]struct{}{
	"item_1": {}, "item_1a": {}, "item_1b": {}, "item_2": {}, "item_3": {},
	"item_4": {}, "item_5": {}, "item_6": {}, "item_7": {}, "item_7a": {},
	"item_8": {}, "item_9": {}, "item_9a": {}, "item_9b": {}, "item_10": {},
	"item_11": {}, "item_12": {}, "item_13": {}, "item_14": {}, "item_15": {},
}

// KnownSection reports whether name is a recognized filing item.
func KnownSection(name string) bool {
	_, ok := knownSections[name]
	return ok
}

// dateLayout is the calendar date format used for filing dates everywhere
// (ids, payloads, API responses).
const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD filing date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid filing date %q: %w", s, err)
	}
	return t, nil
}

// Chunk is an immutable unit of indexed filing text.
type Chunk struct {
	ID         string     // Deterministic: {ticker}_{filing_type}_{filing_date}_{section}_{position}
	Text       string     // Chunk content, bounded by the chunker
	Ticker     string     // Company ticker symbol
	FilingType FilingType // SEC form type
	FilingDate string     // YYYY-MM-DD
	Section    string     // Filing item, e.g. "item_1a"
	Position   int        // Ordinal within section, starts at 0
}

// ChunkID derives the chunk id from the fields that define chunk identity.
// The same inputs always produce the same id, so re-ingesting a filing
// overwrites its previous chunks instead of duplicating them.
func ChunkID(ticker string, filingType FilingType, filingDate, section string, position int) string {
	return fmt.Sprintf("%s_%s_%s_%s_%d", ticker, filingType, filingDate, section, position)
}

// chunkNamespace is the fixed UUIDv5 namespace for deriving vector store
// point ids from chunk ids.
var chunkNamespace = uuid.MustParse("a1f8f6f0-52b1-44a4-9c4d-7b3f0d2e8c11")

// PointID maps a chunk id to its vector store point id. Qdrant only accepts
// UUID or integer point ids, so the readable chunk id goes through UUIDv5;
// the derivation is deterministic, preserving idempotent upserts.
func PointID(chunkID string) string {
	return uuid.NewSHA1(chunkNamespace, []byte(chunkID)).String()
}

// sectionText unmarshals both the plain-string and the {"text": ...} section
// forms the upstream parser has emitted across versions.
type sectionText string

func (s *sectionText) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*s = sectionText(obj.Text)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = sectionText(str)
	return nil
}

// ParsedFiling is one filing as produced by the upstream section parser.
type ParsedFiling struct {
	Ticker      string                 `json:"ticker"`
	CompanyName string                 `json:"company_name"`
	FilingType  FilingType             `json:"filing_type"`
	FilingDate  string                 `json:"filing_date"`
	Sections    map[string]sectionText `json:"sections"`
}

// SectionText returns the text of the named section.
func (f *ParsedFiling) SectionText(name string) string {
	return string(f.Sections[name])
}

// Validate checks the fields ingest depends on.
func (f *ParsedFiling) Validate() error {
	if strings.TrimSpace(f.Ticker) == "" {
		return fmt.Errorf("parsed filing missing ticker")
	}
	if _, err := ParseFilingType(string(f.FilingType)); err != nil {
		return err
	}
	if _, err := ParseDate(f.FilingDate); err != nil {
		return err
	}
	if len(f.Sections) == 0 {
		return fmt.Errorf("parsed filing has no sections")
	}
	return nil
}

// LoadParsedFiling reads and validates a parsed filing JSON file.
func LoadParsedFiling(path string) (*ParsedFiling, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parsed filing: %w", err)
	}

	var filing ParsedFiling
	if err := json.Unmarshal(data, &filing); err != nil {
		return nil, fmt.Errorf("failed to decode parsed filing %s: %w", path, err)
	}

	filing.Ticker = strings.ToUpper(strings.TrimSpace(filing.Ticker))
	normalized, err := ParseFilingType(string(filing.FilingType))
	if err != nil {
		return nil, fmt.Errorf("parsed filing %s: %w", path, err)
	}
	filing.FilingType = normalized

	if err := filing.Validate(); err != nil {
		return nil, fmt.Errorf("parsed filing %s: %w", path, err)
	}
	return &filing, nil
}
