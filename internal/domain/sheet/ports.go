package sheet

import "context"

// Fetcher retrieves the raw CSV export of one sheet tab.
type Fetcher interface {
	FetchCSV(ctx context.Context, ref Reference) (string, error)
}

// Writer mutates sheet tabs through the authenticated values API. Reads never
// need credentials; writes do, and deployments without a key file run
// read-only.
type Writer interface {
	// Capable reports whether write credentials are configured
	Capable() bool

	// AppendRow appends one row to the end of a tab
	AppendRow(ctx context.Context, ref Reference, values []string) error

	// UpdateRow overwrites one data row (zero-based, header excluded)
	UpdateRow(ctx context.Context, ref Reference, rowIndex int, values []string) error
}
