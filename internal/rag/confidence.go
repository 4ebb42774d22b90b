package rag

import (
	"strings"
	"unicode/utf8"
)

const (
	// noInfoConfidenceCap bounds confidence when the answer admits it
	// found nothing.
	noInfoConfidenceCap = 0.3
	// uncitedPenaltyFactor halves the base when a substantive answer
	// cites no sources.
	uncitedPenaltyFactor = 0.5
	// nonTrivialAnswerRunes is the length at which an uncited answer is
	// treated as making claims rather than declining to answer.
	nonTrivialAnswerRunes = 20
)

// noInfoPhrases are matched case-insensitively against the answer.
var noInfoPhrases = []string{
	"don't have information",
	"don't have any information",
	"no information about this",
	"not found in the provided",
}

// scoreConfidence derives a 0-1 confidence for an answer from retrieval
// quality and citation coverage. Deterministic: same inputs, same score.
func scoreConfidence(ranked []Candidate, answer string, citations []Citation) float64 {
	if len(ranked) == 0 {
		return 0.0
	}

	var base float64
	switch {
	case len(citations) > 0:
		var sum float64
		for _, c := range citations {
			sum += c.RelevanceScore
		}
		base = sum / float64(len(citations))
	case utf8.RuneCountInString(answer) >= nonTrivialAnswerRunes:
		// Substantive but uncited: score on the whole candidate set,
		// penalized for the missing citations.
		var sum float64
		for _, c := range ranked {
			sum += relevance(c.Distance)
		}
		base = sum / float64(len(ranked)) * uncitedPenaltyFactor
	}

	lowered := strings.ToLower(answer)
	for _, phrase := range noInfoPhrases {
		if strings.Contains(lowered, phrase) {
			if base > noInfoConfidenceCap {
				base = noInfoConfidenceCap
			}
			break
		}
	}

	return clamp01(base)
}

// relevance converts a distance to a 0-1 relevance score.
func relevance(distance float64) float64 {
	return 1 - clamp01(distance)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
