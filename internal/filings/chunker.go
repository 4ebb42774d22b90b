package filings

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	// DefaultChunkSize is the target chunk size in runes.
	DefaultChunkSize = 1500
	// MaxChunkSize is the hard per-chunk limit; larger blocks get split.
	MaxChunkSize = 3000
	// MinChunkSize is the floor below which chunks are dropped.
	MinChunkSize = 100
	// DefaultOverlap is how many runes of the previous chunk are carried
	// into the next one for context continuity.
	DefaultOverlap = 200
)

// SectionChunker splits parsed filing sections into bounded chunks. Section
// text is the upstream parser's markdown output, so block boundaries come
// from the goldmark AST rather than regex splitting; blocks are then merged
// toward the target size and oversized blocks are split at sentence
// boundaries.
type SectionChunker struct {
	parser     goldmark.Markdown
	targetSize int
	maxSize    int
	minSize    int
	overlap    int
}

// NewSectionChunker creates a chunker with the default size constraints.
func NewSectionChunker() *SectionChunker {
	return &SectionChunker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		targetSize: DefaultChunkSize,
		maxSize:    MaxChunkSize,
		minSize:    MinChunkSize,
		overlap:    DefaultOverlap,
	}
}

// ChunkFiling chunks every section of a parsed filing into Chunk records
// with deterministic ids. Sections are processed in sorted name order so the
// output is reproducible; positions restart at 0 within each section.
func (c *SectionChunker) ChunkFiling(filing *ParsedFiling) []Chunk {
	sectionNames := make([]string, 0, len(filing.Sections))
	for name := range filing.Sections {
		sectionNames = append(sectionNames, name)
	}
	sort.Strings(sectionNames)

	var chunks []Chunk
	for _, section := range sectionNames {
		sectionText := filing.SectionText(section)
		if utf8.RuneCountInString(sectionText) < c.minSize {
			continue
		}

		for position, chunkText := range c.ChunkSection(sectionText) {
			chunks = append(chunks, Chunk{
				ID:         ChunkID(filing.Ticker, filing.FilingType, filing.FilingDate, section, position),
				Text:       chunkText,
				Ticker:     filing.Ticker,
				FilingType: filing.FilingType,
				FilingDate: filing.FilingDate,
				Section:    section,
				Position:   position,
			})
		}
	}
	return chunks
}

// ChunkSection produces size-constrained chunk texts for one section.
func (c *SectionChunker) ChunkSection(sectionText string) []string {
	blocks := c.blockTexts(sectionText)
	if len(blocks) == 0 {
		return nil
	}

	// Pre-split blocks the merge step could never fit.
	split := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if utf8.RuneCountInString(block) > c.targetSize*2 {
			split = append(split, splitLargeText(block, c.targetSize)...)
		} else {
			split = append(split, block)
		}
	}

	merged := mergeBlocks(split, c.targetSize)
	overlapped := addOverlap(merged, c.overlap)

	kept := overlapped[:0]
	for _, chunk := range overlapped {
		if utf8.RuneCountInString(chunk) >= c.minSize {
			kept = append(kept, chunk)
		}
	}
	return kept
}

// blockTexts parses section text as markdown and returns the text of each
// top-level block: paragraphs, headings, lists, tables, code blocks.
func (c *SectionChunker) blockTexts(content string) []string {
	source := []byte(content)
	reader := text.NewReader(source)
	doc := c.parser.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		blockText := strings.TrimSpace(renderBlock(node, source))
		if blockText != "" {
			blocks = append(blocks, blockText)
		}
	}
	return blocks
}

// renderBlock extracts readable text from a block node and its children.
// Table rows are joined with pipes, list items and rows get their own lines.
func renderBlock(block ast.Node, source []byte) string {
	var b strings.Builder

	_ = ast.Walk(block, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		case *ast.String:
			b.Write(node.Value)
			return ast.WalkContinue, nil
		case *ast.CodeBlock:
			writeCodeLines(&b, node.Lines(), source)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			writeCodeLines(&b, node.Lines(), source)
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		// Table extension nodes are matched by kind name; row content is
		// pipe-joined and the cells skipped so they are not emitted twice.
		kind := n.Kind().String()
		if strings.Contains(kind, "TableRow") || strings.Contains(kind, "TableHeader") {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			b.WriteString(tableRowText(n, source))
			b.WriteString("\n")
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

func writeCodeLines(b *strings.Builder, lines *text.Segments, source []byte) {
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
}

// tableRowText joins the cells of a table row with pipe separators.
func tableRowText(row ast.Node, source []byte) string {
	var b strings.Builder
	cells := 0

	_ = ast.Walk(row, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(n.Kind().String(), "TableCell") {
			var cell strings.Builder
			_ = ast.Walk(n, func(inner ast.Node, entering bool) (ast.WalkStatus, error) {
				if !entering {
					return ast.WalkContinue, nil
				}
				switch node := inner.(type) {
				case *ast.Text:
					cell.Write(node.Segment.Value(source))
				case *ast.String:
					cell.Write(node.Value)
				}
				return ast.WalkContinue, nil
			})
			if cells > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(strings.TrimSpace(cell.String()))
			cells++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

// mergeBlocks greedily packs blocks into chunks near the target size.
func mergeBlocks(blocks []string, targetSize int) []string {
	var chunks []string
	var current []string
	currentSize := 0

	for _, block := range blocks {
		blockSize := utf8.RuneCountInString(block)
		if currentSize+blockSize > targetSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = current[:0]
			currentSize = 0
		}
		current = append(current, block)
		currentSize += blockSize
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	return chunks
}

// addOverlap prefixes each chunk after the first with the tail of its
// predecessor, trimmed to a clean word break and marked with an ellipsis.
func addOverlap(chunks []string, overlap int) []string {
	if len(chunks) <= 1 || overlap <= 0 {
		return chunks
	}

	out := make([]string, 0, len(chunks))
	out = append(out, chunks[0])

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := prev
		if len(prev) > overlap {
			tail = prev[len(prev)-overlap:]
		}
		overlapText := string(tail)
		if idx := strings.IndexAny(overlapText, " \n"); idx >= 0 {
			overlapText = overlapText[idx+1:]
		}
		out = append(out, "..."+overlapText+"\n\n"+chunks[i])
	}
	return out
}

// splitLargeText splits text that exceeds maxSize, preferring sentence
// boundaries and falling back to a hard rune cut for run-on sentences.
func splitLargeText(largeText string, maxSize int) []string {
	if utf8.RuneCountInString(largeText) <= maxSize {
		return []string{largeText}
	}

	var chunks []string
	current := ""

	for _, sentence := range splitSentences(largeText) {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(sentence)+1 <= maxSize {
			current = strings.TrimSpace(current + " " + sentence)
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
		}
		if utf8.RuneCountInString(sentence) > maxSize {
			runes := []rune(sentence)
			step := maxSize - 100
			for start := 0; start < len(runes); start += step {
				end := start + step
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, string(runes[start:end]))
			}
			current = ""
		} else {
			current = sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentences splits on whitespace that follows sentence-ending
// punctuation.
func splitSentences(input string) []string {
	var sentences []string
	start := 0
	runes := []rune(input)

	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				sentence := strings.TrimSpace(string(runes[start : i+1]))
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
