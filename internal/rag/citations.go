package rag

import (
	"regexp"
	"strconv"
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// citationSnippetLimit bounds the snippet carried by each citation, in runes.
const citationSnippetLimit = 200

// resolveCitations maps [n] markers in the answer to their ranked sources.
// Citations keep the order the answer first mentions them in; duplicate
// markers coalesce and out-of-range markers are dropped silently.
func resolveCitations(answer string, ranked []Candidate) []Citation {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)

	citations := make([]Citation, 0, len(matches))
	seen := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		index, err := strconv.Atoi(m[1])
		if err != nil || index < 1 || index > len(ranked) {
			continue
		}
		if _, dup := seen[index]; dup {
			continue
		}
		seen[index] = struct{}{}

		c := ranked[index-1]
		citations = append(citations, Citation{
			Index:          index,
			ChunkID:        c.ChunkID,
			Ticker:         c.Ticker,
			FilingType:     c.FilingType,
			FilingDate:     c.FilingDate,
			Section:        c.Section,
			TextSnippet:    snippet(c.Text, citationSnippetLimit),
			RelevanceScore: relevance(c.Distance),
		})
	}
	return citations
}

// snippet returns the first limit runes of text, with an ellipsis appended
// when the text was longer.
func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
