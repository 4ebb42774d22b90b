package rag

import (
	"fmt"
	"strings"
)

const (
	// contextChunkLimit caps each chunk's contribution to the context
	// block, in runes. Total prompt size is bounded by topK entries of
	// this size; the assembler itself never drops an entry.
	contextChunkLimit = 2000
	contextSeparator  = "\n---\n"
	truncationMarker  = "... [truncated]"
)

// assembleContext renders ranked candidates as a numbered source block.
// Entry i carries citation index i+1; indices are dense and contiguous so
// every [n] the model emits maps back to exactly one source.
func assembleContext(ranked []Candidate) string {
	var b strings.Builder
	for i, c := range ranked {
		if i > 0 {
			b.WriteString(contextSeparator)
		}
		fmt.Fprintf(&b, "[%d] Source: %s %s (%s) - %s\n", i+1, c.Ticker, c.FilingType, c.FilingDate, c.Section)
		b.WriteString(truncateChunk(c.Text, contextChunkLimit))
		b.WriteString("\n")
	}
	return b.String()
}

// buildPrompt wraps the question and context block in the generation
// instructions.
func buildPrompt(question, contextBlock string) string {
	return fmt.Sprintf(ragUserPromptFormat, question, contextBlock)
}

// truncateChunk cuts text to at most limit runes and appends a truncation
// marker. The cut never lands inside a citation marker: a tail that would
// read "[" or "[12" backs up to before the bracket so the model never sees
// a dangling half-marker.
func truncateChunk(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := runes[:limit]

	i := len(cut) - 1
	for i >= 0 && cut[i] >= '0' && cut[i] <= '9' {
		i--
	}
	if i >= 0 && cut[i] == '[' {
		cut = cut[:i]
	}

	return string(cut) + truncationMarker
}
