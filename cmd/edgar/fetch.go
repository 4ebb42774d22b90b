package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"edgar-ai/internal/edgar"
	"edgar-ai/internal/filings"
)

var (
	fetchFilingType string
	fetchCount      int
	fetchOut        string
)

// filingSource lists and downloads filings from EDGAR. Built on demand;
// tests pre-set it.
type filingSource interface {
	LookupCompany(ctx context.Context, ticker string) (edgar.Company, error)
	ListFilings(ctx context.Context, ticker string, form filings.FilingType, limit int) ([]edgar.Filing, error)
	DownloadFiling(ctx context.Context, ticker string, filing edgar.Filing, destDir string) (string, error)
}

var edgarClient filingSource

var fetchCmd = &cobra.Command{
	Use:   "fetch <ticker>",
	Short: "Download recent filings from SEC EDGAR",
	Long: `Looks the ticker up in the SEC company index, lists its most recent
filings of the given type and downloads each primary document into the
output directory. SEC fair-access rules require EDGAR_USER_AGENT to be set
to a descriptive value such as "edgar-ai admin@example.com".`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFilingType, "filing-type", "10-K", "filing type to fetch (10-K, 10-Q, 8-K)")
	fetchCmd.Flags().IntVar(&fetchCount, "count", 1, "number of recent filings to download")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "./filings", "directory to download into")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ticker := strings.ToUpper(args[0])

	form, err := filings.ParseFilingType(fetchFilingType)
	if err != nil {
		return err
	}

	client := edgarClient
	if client == nil {
		built, err := edgar.NewClient(cfg.EdgarUserAgent)
		if err != nil {
			return err
		}
		client = built
	}

	company, err := client.LookupCompany(ctx, ticker)
	if err != nil {
		return err
	}
	cmd.Printf("%s - %s (CIK %s)\n", company.Ticker, company.Name, company.CIK)

	list, err := client.ListFilings(ctx, ticker, form, fetchCount)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no %s filings found for %s", form, ticker)
	}

	for _, filing := range list {
		cmd.Printf("Downloading %s %s (%s)...\n", filing.Form, filing.AccessionNumber, filing.FilingDate)
		path, err := client.DownloadFiling(ctx, ticker, filing, fetchOut)
		if err != nil {
			return err
		}
		cmd.Printf("Saved to: %s\n", path)
	}
	return nil
}
