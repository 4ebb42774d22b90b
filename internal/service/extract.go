package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks edgar-ai/internal/service Generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"edgar-ai/internal/contextutil"
	"edgar-ai/internal/filings"
	"edgar-ai/internal/llm"
	"edgar-ai/internal/storage"
)

const (
	// extractMaxAttempts bounds the generate-parse loop; the second
	// attempt carries the first attempt's parse error.
	extractMaxAttempts = 2
	// extractContextMaxRunes caps the extraction context block.
	extractContextMaxRunes = 12000
)

// financialSections are the 10-K items that carry the income statement,
// balance sheet and cash-flow discussion.
var financialSections = []string{"item_7", "item_8", "item_7a"}

// riskSections carry the risk-factor discussion.
var riskSections = []string{"item_1a"}

// Generator produces a completion from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// FinancialMetrics are the core line items extracted from a filing. All
// monetary values are raw USD. Null over guess: a value the filing does not
// state stays nil.
type FinancialMetrics struct {
	Revenue             *float64 `json:"revenue"`
	CostOfRevenue       *float64 `json:"cost_of_revenue"`
	GrossProfit         *float64 `json:"gross_profit"`
	OperatingExpenses   *float64 `json:"operating_expenses"`
	OperatingIncome     *float64 `json:"operating_income"`
	NetIncome           *float64 `json:"net_income"`
	EPSBasic            *float64 `json:"eps_basic"`
	EPSDiluted          *float64 `json:"eps_diluted"`
	TotalAssets         *float64 `json:"total_assets"`
	TotalLiabilities    *float64 `json:"total_liabilities"`
	TotalEquity         *float64 `json:"total_equity"`
	CashAndEquivalents  *float64 `json:"cash_and_equivalents"`
	TotalDebt           *float64 `json:"total_debt"`
	OperatingCashFlow   *float64 `json:"operating_cash_flow"`
	InvestingCashFlow   *float64 `json:"investing_cash_flow"`
	FinancingCashFlow   *float64 `json:"financing_cash_flow"`
	CapitalExpenditures *float64 `json:"capital_expenditures"`
	FreeCashFlow        *float64 `json:"free_cash_flow"`
}

// RiskFactor is one categorized risk from Item 1A.
type RiskFactor struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	IsNew       bool   `json:"is_new"`
}

// FilingExtraction is the structured output for one filing.
type FilingExtraction struct {
	Ticker           string           `json:"ticker"`
	CompanyName      string           `json:"company_name"`
	FilingType       string           `json:"filing_type"`
	FilingDate       string           `json:"filing_date"`
	FiscalYear       int              `json:"fiscal_year"`
	FinancialMetrics FinancialMetrics `json:"financial_metrics"`
	RiskFactors      []RiskFactor     `json:"risk_factors"`
	BusinessSummary  string           `json:"business_summary"`
	ExtractedAt      time.Time        `json:"extracted_at"`
	Model            string           `json:"model"`
	ConfidenceScore  float64          `json:"confidence_score"`
}

// ExtractRequest identifies the filing to extract. CompanyName and
// FiscalYear are optional; the ticker stands in for a missing name and the
// fiscal year is inferred from the filing date.
type ExtractRequest struct {
	Ticker      string
	FilingType  string
	FilingDate  string
	CompanyName string
	FiscalYear  int
}

// Extractor pulls structured financial data and risk factors out of one
// indexed filing.
type Extractor interface {
	ExtractFiling(ctx context.Context, req ExtractRequest) (FilingExtraction, error)
}

// extractor implements Extractor on top of the chunk registry and an LLM.
type extractor struct {
	chunks    storage.ChunkStore
	generator Generator
	model     string
}

// NewExtractor creates a filing extractor.
func NewExtractor(chunks storage.ChunkStore, generator Generator, model string) Extractor {
	return &extractor{
		chunks:    chunks,
		generator: generator,
		model:     model,
	}
}

// ExtractFiling loads the filing's indexed chunks and runs two extraction
// passes: financial metrics plus business summary from the financial items,
// and risk factors from Item 1A. Risk extraction is best-effort; a filing
// without a usable Item 1A still yields a financial extraction.
func (e *extractor) ExtractFiling(ctx context.Context, req ExtractRequest) (FilingExtraction, error) {
	logger := contextutil.LoggerFromContext(ctx)

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return FilingExtraction{}, &ValidationError{Field: "ticker", Message: "ticker is required"}
	}
	filingType, err := filings.ParseFilingType(req.FilingType)
	if err != nil {
		return FilingExtraction{}, &ValidationError{Field: "filing_type", Message: err.Error()}
	}
	filingDate, err := filings.ParseDate(req.FilingDate)
	if err != nil {
		return FilingExtraction{}, &ValidationError{Field: "filing_date", Message: err.Error()}
	}

	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		companyName = ticker
	}
	fiscalYear := req.FiscalYear
	if fiscalYear == 0 {
		fiscalYear = inferFiscalYear(filingDate)
	}

	rows, err := e.loadFilingChunks(ctx, ticker, string(filingType), req.FilingDate)
	if err != nil {
		return FilingExtraction{}, err
	}
	if len(rows) == 0 {
		return FilingExtraction{}, fmt.Errorf(
			"no chunks indexed for %s %s %s, ingest the filing first: %w",
			ticker, filingType, req.FilingDate, ErrNotFound,
		)
	}

	logger.InfoContext(ctx, "extraction started",
		"ticker", ticker,
		"filing_type", filingType,
		"filing_date", req.FilingDate,
		"fiscal_year", fiscalYear,
		"chunks", len(rows),
	)

	metrics, summary, confidence, err := e.extractFinancials(ctx, rows, ticker, companyName, string(filingType), req.FilingDate, fiscalYear)
	if err != nil {
		return FilingExtraction{}, err
	}

	risks := e.extractRisks(ctx, rows)

	logger.InfoContext(ctx, "extraction completed",
		"ticker", ticker,
		"risk_factors", len(risks),
		"confidence", confidence,
	)

	return FilingExtraction{
		Ticker:           ticker,
		CompanyName:      companyName,
		FilingType:       string(filingType),
		FilingDate:       req.FilingDate,
		FiscalYear:       fiscalYear,
		FinancialMetrics: metrics,
		RiskFactors:      risks,
		BusinessSummary:  summary,
		ExtractedAt:      time.Now().UTC(),
		Model:            e.model,
		ConfidenceScore:  confidence,
	}, nil
}

// loadFilingChunks returns the filing's chunk rows in section, position
// order.
func (e *extractor) loadFilingChunks(ctx context.Context, ticker, filingType, filingDate string) ([]*storage.ChunkRecord, error) {
	ids, err := e.chunks.ListIDsByFiling(ctx, ticker, filingType, filingDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list filing chunks: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	byID, err := e.chunks.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load filing chunks: %w", err)
	}
	rows := make([]*storage.ChunkRecord, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// financialExtractionResult is the JSON shape the model is asked for.
type financialExtractionResult struct {
	FinancialMetrics FinancialMetrics `json:"financial_metrics"`
	BusinessSummary  string           `json:"business_summary"`
	ConfidenceScore  *float64         `json:"confidence_score"`
}

func (e *extractor) extractFinancials(ctx context.Context, rows []*storage.ChunkRecord, ticker, companyName, filingType, filingDate string, fiscalYear int) (FinancialMetrics, string, float64, error) {
	contextBlock := buildExtractionContext(rows, financialSections, extractContextMaxRunes)
	basePrompt := fmt.Sprintf(financialExtractionPromptFormat,
		filingType, ticker, companyName, filingDate, fiscalYear, contextBlock)

	prompt := basePrompt
	var lastErr error
	for attempt := 0; attempt < extractMaxAttempts; attempt++ {
		raw, err := e.generator.Generate(ctx, extractionSystemPrompt, prompt)
		if err != nil {
			return FinancialMetrics{}, "", 0, classifyProvider(ctx, "failed to generate financial extraction", err)
		}

		var result financialExtractionResult
		if err := parseExtractionJSON(raw, &result); err != nil {
			lastErr = err
			prompt = basePrompt + fmt.Sprintf(retrySuffixFormat, err)
			continue
		}

		// Mirror the schema default when the model omits the score.
		confidence := 0.5
		if result.ConfidenceScore != nil {
			confidence = clampUnit(*result.ConfidenceScore)
		}
		return result.FinancialMetrics, result.BusinessSummary, confidence, nil
	}
	return FinancialMetrics{}, "", 0, fmt.Errorf("failed to parse financial extraction after %d attempts: %w", extractMaxAttempts, lastErr)
}

// riskExtractionResult is the JSON shape the model is asked for.
type riskExtractionResult struct {
	RiskFactors []RiskFactor `json:"risk_factors"`
}

// extractRisks returns the categorized risks from Item 1A, or nil when the
// filing has no Item 1A content or the model never produced parseable
// output. Failures are logged, not returned: risks enrich the extraction
// but never block it.
func (e *extractor) extractRisks(ctx context.Context, rows []*storage.ChunkRecord) []RiskFactor {
	logger := contextutil.LoggerFromContext(ctx)

	contextBlock := buildExtractionContext(rows, riskSections, extractContextMaxRunes)
	if strings.TrimSpace(contextBlock) == "" {
		return nil
	}
	basePrompt := fmt.Sprintf(riskExtractionPromptFormat, contextBlock)

	prompt := basePrompt
	for attempt := 0; attempt < extractMaxAttempts; attempt++ {
		raw, err := e.generator.Generate(ctx, extractionSystemPrompt, prompt)
		if err != nil {
			logger.WarnContext(ctx, "risk extraction generate failed", "error", err)
			return nil
		}

		var result riskExtractionResult
		if err := parseExtractionJSON(raw, &result); err != nil {
			logger.WarnContext(ctx, "risk extraction parse failed", "attempt", attempt+1, "error", err)
			prompt = basePrompt + fmt.Sprintf(retrySuffixFormat, err)
			continue
		}
		return result.RiskFactors
	}
	return nil
}

// buildExtractionContext renders the rows from the wanted sections as
// "[SECTION]" headed blocks, stopping before the block would exceed
// maxRunes.
func buildExtractionContext(rows []*storage.ChunkRecord, sections []string, maxRunes int) string {
	wanted := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		wanted[s] = struct{}{}
	}

	var parts []string
	total := 0
	for _, row := range rows {
		if _, ok := wanted[row.Section]; !ok {
			continue
		}
		formatted := fmt.Sprintf("[%s]\n%s\n", strings.ToUpper(row.Section), row.Text)
		n := utf8.RuneCountInString(formatted)
		if total+n > maxRunes {
			break
		}
		parts = append(parts, formatted)
		total += n
	}
	return strings.Join(parts, "\n")
}

// parseExtractionJSON decodes the model's JSON into v. Markdown code fences
// are stripped, and when the payload still fails to decode the outermost
// brace-delimited object is tried before giving up.
func parseExtractionJSON(text string, v any) error {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) > 1 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[1 : len(lines)-1]
		} else {
			lines = lines[1:]
		}
		trimmed = strings.Join(lines, "\n")
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), v); err == nil {
			return nil
		}
	}

	preview := trimmed
	if runes := []rune(preview); len(runes) > 200 {
		preview = string(runes[:200]) + "..."
	}
	return fmt.Errorf("response is not valid JSON: %q", preview)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// inferFiscalYear maps a filing date to the fiscal year it reports on.
// Annual reports filed by the end of March cover the prior year.
func inferFiscalYear(filingDate time.Time) int {
	if filingDate.Month() <= time.March {
		return filingDate.Year() - 1
	}
	return filingDate.Year()
}

// classifyProvider maps a provider error onto the service sentinels.
func classifyProvider(ctx context.Context, msg string, err error) error {
	if llm.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %v: %w", msg, err, ErrExternalTimeout)
	}
	return fmt.Errorf("%s: %v: %w", msg, err, ErrExternalService)
}
