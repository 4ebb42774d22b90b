package rag

import (
	"sort"
	"strings"
	"unicode"

	"edgar-ai/internal/filings"
)

const (
	sectionAffinityBonus = 0.1
	maxRecencyBonus      = 0.05
)

// rerank orders candidates by composite score and keeps the best topK.
// Score = distance - section affinity bonus - recency bonus; lower wins.
// The sort is stable, so candidates that score equally keep their
// retrieval order. Pure function: no I/O, no randomness, no wall clock.
func rerank(candidates []Candidate, queryText string, topK int, sectionKeywords map[string][]string) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	queryTokens := tokenSet(queryText)
	freshness := freshnessScores(candidates)

	type scored struct {
		candidate Candidate
		score     float64
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		score := c.Distance
		if hasSectionAffinity(c.Section, queryTokens, sectionKeywords) {
			score -= sectionAffinityBonus
		}
		score -= maxRecencyBonus * freshness[i]
		ranked[i] = scored{candidate: c, score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	result := make([]Candidate, topK)
	for i := range result {
		result[i] = ranked[i].candidate
	}
	return result
}

// hasSectionAffinity reports whether any keyword registered for the section
// appears as a whole token in the query.
func hasSectionAffinity(section string, queryTokens map[string]struct{}, sectionKeywords map[string][]string) bool {
	for _, keyword := range sectionKeywords[section] {
		if _, ok := queryTokens[keyword]; ok {
			return true
		}
	}
	return false
}

// freshnessScores normalizes each candidate's filing date linearly over the
// candidate set's date span: newest = 1, oldest = 0. A single date, a zero
// span, or unparseable dates yield 0; a constant shift cannot change the
// order, so the bonus only matters when the set actually spans time.
func freshnessScores(candidates []Candidate) []float64 {
	scores := make([]float64, len(candidates))

	times := make([]int64, len(candidates))
	valid := make([]bool, len(candidates))
	var minTS, maxTS int64
	seen := false
	for i, c := range candidates {
		date, err := filings.ParseDate(c.FilingDate)
		if err != nil {
			continue
		}
		ts := date.Unix()
		times[i] = ts
		valid[i] = true
		if !seen || ts < minTS {
			minTS = ts
		}
		if !seen || ts > maxTS {
			maxTS = ts
		}
		seen = true
	}

	span := maxTS - minTS
	if !seen || span == 0 {
		return scores
	}
	for i := range times {
		if !valid[i] {
			continue
		}
		scores[i] = float64(times[i]-minTS) / float64(span)
	}
	return scores
}

// tokenSet lowers text and splits it into letter/digit runs.
func tokenSet(text string) map[string]struct{} {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	tokens := strings.Fields(builder.String())
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
