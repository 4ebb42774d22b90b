// Package policy holds the tunable recognition and scoring tables used by
// query filter extraction and reranking. Defaults are compiled in; an
// optional YAML file overrides individual entries.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy carries the tables that are deliberately not hard contracts: the
// company-name alias map and the section-affinity keyword map.
type Policy struct {
	// TickerAliases maps lowercase company names to ticker symbols.
	TickerAliases map[string]string `yaml:"ticker_aliases"`
	// SectionKeywords maps a filing section to the query keywords that
	// signal interest in it.
	SectionKeywords map[string][]string `yaml:"section_keywords"`
}

// Default returns the compiled-in policy covering the majors.
func Default() Policy {
	return Policy{
		TickerAliases: map[string]string{
			"apple":     "AAPL",
			"microsoft": "MSFT",
			"google":    "GOOGL",
			"alphabet":  "GOOGL",
			"amazon":    "AMZN",
			"meta":      "META",
			"facebook":  "META",
			"nvidia":    "NVDA",
			"tesla":     "TSLA",
			"jpmorgan":  "JPM",
			"johnson":   "JNJ",
			"procter":   "PG",
		},
		SectionKeywords: map[string][]string{
			"item_1a": {"risk", "risks", "threat", "threats", "concern", "concerns", "challenge", "challenges"},
			"item_7":  {"revenue", "revenues", "income", "profit", "profits", "financial", "earnings"},
			"item_8":  {"revenue", "revenues", "income", "profit", "profits", "financial", "earnings"},
			"item_1":  {"business", "company", "product", "products", "service", "services", "segment", "segments"},
		},
	}
}

// Load reads a YAML policy file and merges it over the defaults: aliases
// merge per name, keyword lists replace per section. An empty path returns
// the defaults unchanged.
func Load(path string) (Policy, error) {
	base := Default()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var overrides Policy
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	for name, ticker := range overrides.TickerAliases {
		base.TickerAliases[name] = ticker
	}
	for section, keywords := range overrides.SectionKeywords {
		base.SectionKeywords[section] = keywords
	}
	return base, nil
}
