package sheet

import (
	"github.com/dasbor/backend/internal/domain/sheet"
	"github.com/shopspring/decimal"
)

// CustomerListResult carries the customer tab listing
type CustomerListResult struct {
	Rows []sheet.Row `json:"rows"`
}

// ReservationListResult carries the reservation tab listing
type ReservationListResult struct {
	Rows []sheet.Row `json:"rows"`
}

// MenuSummaryResult carries the aggregated menu counts for one customer
type MenuSummaryResult struct {
	ExternalID string            `json:"externalId"`
	Items      []sheet.MenuCount `json:"items"`
}

// MenuItem is one entry of the menu listing with its price normalized
type MenuItem struct {
	Index int             `json:"index"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuListResult carries the menu tab listing
type MenuListResult struct {
	Items []MenuItem `json:"items"`
}

// FAQEntry is one question/answer pair from the FAQ tab
type FAQEntry struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQListResult carries the FAQ tab listing
type FAQListResult struct {
	Entries []FAQEntry `json:"entries"`
}

// WriteCapabilityResult reports whether FAQ mutations are available. A
// read-only deployment is a valid configuration, not an error.
type WriteCapabilityResult struct {
	Writable bool `json:"writable"`
}

// AddFAQInput contains the input for appending an FAQ entry
type AddFAQInput struct {
	Question string
	Answer   string
}

// UpdateFAQInput contains the input for overwriting an FAQ entry
type UpdateFAQInput struct {
	RowIndex int
	Question string
	Answer   string
}
