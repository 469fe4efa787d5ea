package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dasbor/backend/internal/domain/sheet"
	"github.com/dasbor/backend/internal/infrastructure/config"
)

// CSVFetcher reads sheet tabs through the public CSV export endpoint. It
// needs no credentials: the spreadsheet must be shared link-visible, and a
// non-2xx response is reported as a configuration error with the sharing
// instructions attached. No retries, every request hits the endpoint fresh.
type CSVFetcher struct {
	baseURL    string
	httpClient *http.Client
	maxBody    int64
}

// NewCSVFetcher creates a fetcher from the sheets configuration
func NewCSVFetcher(cfg config.SheetsConfig) *CSVFetcher {
	return &CSVFetcher{
		baseURL: cfg.ExportBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		maxBody: cfg.MaxResponseSize,
	}
}

// exportURL builds the CSV export endpoint for a sheet reference
func (f *CSVFetcher) exportURL(ref sheet.Reference) string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s",
		f.baseURL, url.PathEscape(ref.SpreadsheetID), url.QueryEscape(ref.Gid))
}

// FetchCSV downloads one tab as CSV text
func (f *CSVFetcher) FetchCSV(ctx context.Context, ref sheet.Reference) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.exportURL(ref), nil)
	if err != nil {
		return "", fmt.Errorf("build export request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		// Network failures surface the same remediation steps as HTTP
		// errors: from the user's side both mean "the dashboard cannot
		// see your sheet".
		return "", sheet.NewFetchError(0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", sheet.NewFetchError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", fmt.Errorf("read export response: %w", err)
	}

	return string(body), nil
}

var _ sheet.Fetcher = (*CSVFetcher)(nil)
