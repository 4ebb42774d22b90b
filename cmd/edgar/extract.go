package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"edgar-ai/internal/service"
)

var (
	extractTicker     string
	extractFilingType string
	extractDate       string
)

// filingExtractor pulls structured data out of one indexed filing. Built on
// demand; tests pre-set it.
var filingExtractor service.Extractor

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured financials and risk factors from an indexed filing",
	Long: `Runs LLM extraction over the indexed chunks of one filing and prints the
result as JSON: financial metrics from the financial statement items and
categorized risk factors from Item 1A. Values the filing does not state are
null, never guessed.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractTicker, "ticker", "", "company ticker (required)")
	extractCmd.Flags().StringVar(&extractFilingType, "filing-type", "", "filing type (required)")
	extractCmd.Flags().StringVar(&extractDate, "date", "", "filing date YYYY-MM-DD (required)")
	_ = extractCmd.MarkFlagRequired("ticker")
	_ = extractCmd.MarkFlagRequired("filing-type")
	_ = extractCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ext := filingExtractor
	if ext == nil {
		built, cleanup, err := buildExtractor()
		if err != nil {
			return err
		}
		defer cleanup()
		ext = built
	}

	result, err := ext.ExtractFiling(cmd.Context(), service.ExtractRequest{
		Ticker:     strings.ToUpper(extractTicker),
		FilingType: extractFilingType,
		FilingDate: extractDate,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal extraction: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
