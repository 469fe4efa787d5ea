package sheet

import (
	"fmt"
	"strings"

	"github.com/dasbor/backend/internal/domain/shared"
)

// Sheet error codes
const (
	ErrCodeInvalidSpreadsheetURL = "INVALID_SPREADSHEET_URL"
	ErrCodeSheetNotConfigured    = "SHEET_NOT_CONFIGURED"
	ErrCodeSheetFetchFailed      = "SHEET_FETCH_FAILED"
	ErrCodeMissingRequiredColumn = "MISSING_REQUIRED_COLUMN"
	ErrCodeWriteNotConfigured    = "WRITE_NOT_CONFIGURED"
)

// Common sheet errors
var (
	// ErrInvalidSpreadsheetURL is returned when no spreadsheet ID can be
	// derived from the stored URL.
	ErrInvalidSpreadsheetURL = shared.NewDomainError(ErrCodeInvalidSpreadsheetURL,
		"The stored link is not a valid Google Sheets URL")

	// ErrSheetNotConfigured is returned when a business has no stored
	// spreadsheet link at all.
	ErrSheetNotConfigured = shared.NewDomainError(ErrCodeSheetNotConfigured,
		"No spreadsheet database is linked to this business")

	// ErrWriteNotConfigured is returned for FAQ mutations when no write
	// credentials are configured. Read-only deployments are a valid state.
	ErrWriteNotConfigured = shared.NewDomainError(ErrCodeWriteNotConfigured,
		"Spreadsheet write credentials are not configured")
)

// FetchInstructions are the remediation steps surfaced verbatim when the CSV
// export endpoint cannot be read. Spreadsheet visibility is a configuration
// problem, not a transient fault, so callers do not retry.
var FetchInstructions = []string{
	"Open the spreadsheet in Google Sheets",
	"Click Share in the top-right corner",
	"Under General access choose \"Anyone with the link\"",
	"Set the role to Viewer and save",
}

// NewFetchError builds the configuration error for a non-2xx export response.
func NewFetchError(status int) *shared.DomainError {
	return shared.NewDomainErrorWithInstructions(ErrCodeSheetFetchFailed,
		fmt.Sprintf("Could not read the spreadsheet (HTTP %d). Check its sharing settings.", status),
		FetchInstructions)
}

// MissingColumnError reports a mandatory header role that could not be
// resolved. It carries the full header list so users can self-correct their
// spreadsheet.
type MissingColumnError struct {
	Role    Role
	Headers []string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found among headers: %s",
		e.Role, strings.Join(e.Headers, ", "))
}

// Domain converts the error into the client-facing DomainError shape.
func (e *MissingColumnError) Domain() *shared.DomainError {
	return shared.NewDomainErrorWithInstructions(ErrCodeMissingRequiredColumn,
		fmt.Sprintf("Could not find a %q column in the sheet", e.Role),
		append([]string{"Headers found in the sheet:"}, e.Headers...))
}
