package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// execute runs the CLI with args and returns everything it printed. Flag
// state is restored afterwards so tests stay independent.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("QDRANT_VECTOR_SIZE", "8")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "edgar.db"))
	t.Setenv("LOG_LEVEL", "error")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlagState()
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlagState puts every command flag back to its default. Bound
// variables and the Changed markers both persist across Execute calls.
func resetFlagState() {
	queryTicker, queryFilingType = "", ""
	queryTopK = 5
	queryJSON, queryInteractive = false, false
	ingestIncludes = nil
	fetchFilingType, fetchOut = "10-K", "./filings"
	fetchCount = 1
	extractTicker, extractFilingType, extractDate = "", "", ""

	clearChanged(queryCmd, "ticker", "filing-type", "top-k", "json", "interactive")
	clearChanged(ingestCmd, "include")
	clearChanged(fetchCmd, "filing-type", "count", "out")
	clearChanged(extractCmd, "ticker", "filing-type", "date")
}

func clearChanged(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}
