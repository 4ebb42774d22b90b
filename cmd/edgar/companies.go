package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"edgar-ai/internal/storage"
)

// companyLister lists indexed companies. Built on demand; tests pre-set it.
var companyLister storage.CompanyStore

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List indexed companies and their chunk counts",
	Args:  cobra.NoArgs,
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	lister := companyLister
	if lister == nil {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close()
		}()
		lister = storage.NewCompanyRepo(db)
	}

	counts, err := lister.ListWithCounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if len(counts) == 0 {
		cmd.Println("No companies indexed.")
		return nil
	}

	total := 0
	cmd.Printf("Indexed companies (%d):\n", len(counts))
	for _, c := range counts {
		cmd.Printf("  %-6s %s (%d chunks)\n", c.Ticker, c.Name, c.ChunkCount)
		total += c.ChunkCount
	}
	cmd.Printf("Total chunks: %d\n", total)
	return nil
}
