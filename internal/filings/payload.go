package filings

import "time"

// Payload keys stored with each vector point. The writer (ingest), the
// filter builder (vector store) and the reader (query pipeline) all share
// these names. PayloadFilingTS carries the filing date as unix seconds so
// date bounds can be applied as a numeric range.
const (
	PayloadTicker     = "ticker"
	PayloadFilingType = "filing_type"
	PayloadFilingDate = "filing_date"
	PayloadFilingTS   = "filing_ts"
	PayloadSection    = "section"
	PayloadPosition   = "position"
)

// Payload returns the vector point payload for the chunk. Chunk text is not
// stored here; the relational store is the authority for text.
func (c *Chunk) Payload() map[string]any {
	payload := map[string]any{
		PayloadTicker:     c.Ticker,
		PayloadFilingType: string(c.FilingType),
		PayloadFilingDate: c.FilingDate,
		PayloadSection:    c.Section,
		PayloadPosition:   int64(c.Position),
	}
	if date, err := ParseDate(c.FilingDate); err == nil {
		payload[PayloadFilingTS] = date.Unix()
	}
	return payload
}

// ChunkMeta is the chunk metadata carried on a search hit.
type ChunkMeta struct {
	Ticker     string
	FilingType string
	FilingDate string
	Section    string
	Position   int
}

// Date returns the parsed filing date, or the zero time if the payload
// carried no usable date.
func (m ChunkMeta) Date() time.Time {
	date, err := ParseDate(m.FilingDate)
	if err != nil {
		return time.Time{}
	}
	return date
}

// MetaFromPayload parses a point payload produced by Chunk.Payload.
// Missing or mistyped fields are left at their zero values.
func MetaFromPayload(payload map[string]any) ChunkMeta {
	meta := ChunkMeta{}
	if v, ok := payload[PayloadTicker].(string); ok {
		meta.Ticker = v
	}
	if v, ok := payload[PayloadFilingType].(string); ok {
		meta.FilingType = v
	}
	if v, ok := payload[PayloadFilingDate].(string); ok {
		meta.FilingDate = v
	}
	if v, ok := payload[PayloadSection].(string); ok {
		meta.Section = v
	}
	if v, ok := payload[PayloadPosition].(int64); ok {
		meta.Position = int(v)
	}
	return meta
}
