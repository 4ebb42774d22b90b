package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"edgar-ai/internal/filings"
	"edgar-ai/internal/service"
)

const (
	defaultBaseURL     = "https://data.sec.gov"
	defaultArchivesURL = "https://www.sec.gov/Archives/edgar/data"
	defaultTickersURL  = "https://www.sec.gov/files/company_tickers.json"

	// SEC fair-access policy allows at most 10 requests per second.
	requestsPerSecond = 10

	requestTimeout = 30 * time.Second

	// maxAttempts bounds how many times one EDGAR request is issued.
	maxAttempts  = 2
	retryBackoff = 500 * time.Millisecond
)

// Client fetches company and filing data from SEC EDGAR. All requests share
// one rate limiter and carry the User-Agent the SEC requires (product name
// plus contact address).
type Client struct {
	BaseURL     string
	ArchivesURL string
	TickersURL  string
	UserAgent   string

	client  *http.Client
	limiter *rate.Limiter

	mu        sync.Mutex
	companies map[string]Company
}

// Company is one entry of the SEC company index.
type Company struct {
	CIK    string // zero-padded to 10 digits
	Ticker string
	Name   string
}

// Filing is one row of a company's recent-filings list.
type Filing struct {
	AccessionNumber string
	Form            string
	FilingDate      string // YYYY-MM-DD
	ReportDate      string // period end, may be empty
	PrimaryDocument string // main document filename, may be empty
}

// NewClient creates an EDGAR client. The SEC rejects anonymous traffic, so
// userAgent is required.
func NewClient(userAgent string) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, fmt.Errorf("edgar user agent is required (set EDGAR_USER_AGENT, e.g. \"edgar-ai you@example.com\")")
	}
	return &Client{
		BaseURL:     defaultBaseURL,
		ArchivesURL: defaultArchivesURL,
		TickersURL:  defaultTickersURL,
		UserAgent:   userAgent,
		client:      &http.Client{Timeout: requestTimeout},
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// LookupCompany resolves a ticker to its SEC company record. The company
// index is downloaded once per process and served from memory afterwards.
func (c *Client) LookupCompany(ctx context.Context, ticker string) (Company, error) {
	companies, err := c.loadCompanyIndex(ctx)
	if err != nil {
		return Company{}, err
	}

	company, ok := companies[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return Company{}, fmt.Errorf("ticker %q not in SEC company index: %w", ticker, service.ErrNotFound)
	}
	return company, nil
}

// ListFilings returns up to limit recent filings of the given form for a
// ticker, newest first as EDGAR reports them. A limit of 0 or less means 10.
func (c *Client) ListFilings(ctx context.Context, ticker string, form filings.FilingType, limit int) ([]Filing, error) {
	company, err := c.LookupCompany(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.BaseURL, company.CIK)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for %s: %w", company.Ticker, err)
	}

	var subs submissionsResponse
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode submissions for %s: %w", company.Ticker, err)
	}

	// The submissions API returns parallel arrays.
	recent := subs.Filings.Recent
	var result []Filing
	for i, got := range recent.Form {
		if got != string(form) {
			continue
		}
		filing := Filing{
			Form:            got,
			AccessionNumber: at(recent.AccessionNumber, i),
			FilingDate:      at(recent.FilingDate, i),
			ReportDate:      at(recent.ReportDate, i),
			PrimaryDocument: at(recent.PrimaryDocument, i),
		}
		result = append(result, filing)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// DownloadFiling saves a filing's primary document under destDir and returns
// the written path. When the filing row carries no primary document name,
// the filing's archive index is inspected to pick one.
func (c *Client) DownloadFiling(ctx context.Context, ticker string, filing Filing, destDir string) (string, error) {
	company, err := c.LookupCompany(ctx, ticker)
	if err != nil {
		return "", err
	}

	cik := archiveCIK(company.CIK)
	accession := strings.ReplaceAll(filing.AccessionNumber, "-", "")

	docName := filing.PrimaryDocument
	if docName == "" {
		docName, err = c.resolvePrimaryDocument(ctx, cik, accession, company.Ticker)
		if err != nil {
			return "", err
		}
	}

	url := fmt.Sprintf("%s/%s/%s/%s", c.ArchivesURL, cik, accession, docName)
	content, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", docName, err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	name := fmt.Sprintf("%s_%s_%s%s",
		company.Ticker,
		strings.ReplaceAll(filing.Form, "-", ""),
		filing.FilingDate,
		filepath.Ext(docName),
	)
	path := filepath.Join(destDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// loadCompanyIndex downloads and caches the ticker→company index.
func (c *Client) loadCompanyIndex(ctx context.Context) (map[string]Company, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.companies != nil {
		return c.companies, nil
	}

	body, err := c.get(ctx, c.TickersURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company index: %w", err)
	}

	// Keyed by row number, not by ticker.
	var raw map[string]struct {
		CIK    int64  `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode company index: %w", err)
	}

	companies := make(map[string]Company, len(raw))
	for _, entry := range raw {
		ticker := strings.ToUpper(entry.Ticker)
		companies[ticker] = Company{
			CIK:    fmt.Sprintf("%010d", entry.CIK),
			Ticker: ticker,
			Name:   entry.Title,
		}
	}
	c.companies = companies
	return companies, nil
}

// resolvePrimaryDocument lists the filing's archive directory and picks the
// main document from it.
func (c *Client) resolvePrimaryDocument(ctx context.Context, cik, accession, ticker string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/index.json", c.ArchivesURL, cik, accession)
	body, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch filing index: %w", err)
	}

	var index filingIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return "", fmt.Errorf("failed to decode filing index: %w", err)
	}

	doc, err := choosePrimaryDocument(index.Directory.Item, ticker)
	if err != nil {
		return "", fmt.Errorf("filing %s: %w", accession, err)
	}
	return doc, nil
}

// xbrlReportPattern matches the R1.htm, R2.htm... rendered XBRL reports that
// accompany a filing.
var xbrlReportPattern = regexp.MustCompile(`^r\d+\.htm`)

// choosePrimaryDocument picks the filing's main document from its archive
// directory listing. Preference order: an HTML document named after the
// ticker, then the largest HTML document, then a PDF. Exhibits, index pages
// and rendered XBRL reports never qualify.
func choosePrimaryDocument(items []indexItem, ticker string) (string, error) {
	tickerLower := strings.ToLower(ticker)

	var primary string
	var htmlDocs []indexItem
	var pdfDoc string

	for _, item := range items {
		lower := strings.ToLower(item.Name)
		switch {
		case strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html"):
			if isExhibit(lower) || strings.Contains(lower, "index") || xbrlReportPattern.MatchString(lower) {
				continue
			}
			htmlDocs = append(htmlDocs, item)
			if primary == "" && strings.Contains(lower, tickerLower) {
				primary = item.Name
			}
		case strings.HasSuffix(lower, ".pdf"):
			pdfDoc = item.Name
		}
	}

	if primary != "" {
		return primary, nil
	}
	if len(htmlDocs) > 0 {
		sort.Slice(htmlDocs, func(i, j int) bool { return htmlDocs[i].Size > htmlDocs[j].Size })
		return htmlDocs[0].Name, nil
	}
	if pdfDoc != "" {
		return pdfDoc, nil
	}
	return "", fmt.Errorf("no suitable document found")
}

func isExhibit(name string) bool {
	return strings.Contains(name, "exhibit") ||
		strings.HasPrefix(name, "ex") ||
		strings.Contains(name, "-ex") ||
		strings.Contains(name, "_ex")
}

// get issues one rate-limited GET. Rate-limit rejections, server errors and
// timeouts are retried once; a 404 comes back as ErrNotFound.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
		var retry bool
		body, retry, err = c.getOnce(ctx, url)
		if err == nil || !retry {
			return body, err
		}
	}
	return nil, err
}

func (c *Client) getOnce(ctx context.Context, url string) (body []byte, retry bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%s: %w", url, service.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		raw, _ := io.ReadAll(resp.Body)
		return nil, true, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	default:
		raw, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}
	return body, false, nil
}

// archiveCIK strips the zero padding; archive URLs use the short form.
func archiveCIK(cik string) string {
	trimmed := strings.TrimLeft(cik, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

type submissionsResponse struct {
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			ReportDate      []string `json:"reportDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

type filingIndex struct {
	Directory struct {
		Item []indexItem `json:"item"`
	} `json:"directory"`
}

type indexItem struct {
	Name string   `json:"name"`
	Size itemSize `json:"size"`
}

// itemSize tolerates the archive index's mixed size encodings: a number, a
// numeric string, or an empty string.
type itemSize int64

func (s *itemSize) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		*s = 0
		return nil
	}
	*s = itemSize(n)
	return nil
}
