package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"edgar-ai/internal/rag"
)

var (
	queryTicker      string
	queryFilingType  string
	queryTopK        int
	queryJSON        bool
	queryInteractive bool
)

// queryEngine answers questions. Built on demand; tests pre-set it.
var queryEngine rag.Engine

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about indexed SEC filings",
	Long: `Answers a natural-language question from the indexed filings, citing the
filing sections the answer came from. Company names, tickers and words like
"annual" or "quarterly" recognized in the question narrow retrieval
automatically; the --ticker and --filing-type flags override them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryTicker, "ticker", "", "restrict retrieval to one ticker")
	queryCmd.Flags().StringVar(&queryFilingType, "filing-type", "", "restrict retrieval to one filing type (10-K, 10-Q, 8-K)")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 5, "number of context chunks to use")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the full response as JSON")
	queryCmd.Flags().BoolVarP(&queryInteractive, "interactive", "i", false, "interactive question loop")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if !queryInteractive && len(args) == 0 {
		return cmd.Help()
	}

	engine := queryEngine
	if engine == nil {
		built, cleanup, err := buildQueryEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		engine = built
	}

	if queryInteractive {
		return runInteractiveLoop(cmd, engine)
	}

	resp, err := engine.Query(cmd.Context(), rag.Request{
		Query:      args[0],
		Ticker:     queryTicker,
		FilingType: queryFilingType,
		TopK:       queryTopK,
	})
	if err != nil {
		return err
	}

	if queryJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, resp)
	return nil
}

// runInteractiveLoop reads questions from stdin until EOF or an exit word.
// Prompts are only printed when stdin is a terminal, so piped input works.
func runInteractiveLoop(cmd *cobra.Command, engine rag.Engine) error {
	in := cmd.InOrStdin()
	isTTY := false
	if f, ok := in.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	if isTTY {
		cmd.Println("SEC filing query - interactive mode")
		cmd.Println("Type 'quit' to exit")
		cmd.Println()
	}

	scanner := bufio.NewScanner(in)
	for {
		if isTTY {
			cmd.Print("Question: ")
		}
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "quit", "exit", "q":
			return nil
		}

		resp, err := engine.Query(cmd.Context(), rag.Request{
			Query:      question,
			Ticker:     queryTicker,
			FilingType: queryFilingType,
			TopK:       queryTopK,
		})
		if err != nil {
			cmd.PrintErrf("Error: %v\n\n", err)
			continue
		}

		cmd.Println()
		printAnswer(cmd, resp)
		cmd.Println()
	}
	return scanner.Err()
}

func printAnswer(cmd *cobra.Command, resp rag.Response) {
	cmd.Printf("Answer (confidence: %.2f):\n", resp.Confidence)
	cmd.Println(resp.Answer)

	if len(resp.Citations) > 0 {
		cmd.Println()
		cmd.Printf("Sources (%d):\n", len(resp.Citations))
		for _, c := range resp.Citations {
			cmd.Printf("  [%d] %s - %s\n", c.Index, c.ChunkID, c.Section)
		}
	}
}
