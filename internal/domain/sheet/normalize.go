package sheet

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one spreadsheet record after normalization. Fields carries every
// cell keyed by its header text; Index is the zero-based data-row position,
// kept so clients have stable keys across reloads.
type Row struct {
	Index       int               `json:"index"`
	Fields      map[string]string `json:"fields"`
	DerivedDate *string           `json:"_derivedDate,omitempty"`
}

// Get returns a field value by header, empty string when absent.
func (r Row) Get(header string) string {
	return r.Fields[header]
}

// MarshalJSON flattens the fields to top-level keys, matching the payload
// shape the dashboard UI consumes: one key per header plus "index" and,
// when derivable, "_derivedDate".
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["index"] = r.Index
	if r.DerivedDate != nil {
		out["_derivedDate"] = *r.DerivedDate
	}
	return json.Marshal(out)
}

// ByRole returns the value of the column resolved for a role, empty string
// when the role is unresolved or the row is short.
func ByRole(fields []string, index HeaderIndex, role Role) string {
	col := index.Column(role)
	if col < 0 || col >= len(fields) {
		return ""
	}
	return fields[col]
}

var (
	isoDatePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

// fallback layouts tried after the explicit day-first patterns
var genericDateLayouts = []string{
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC3339,
}

// NormalizeDate canonicalizes a user-authored date cell to YYYY-MM-DD.
// Day-first D/M/YYYY and D-M-YYYY are the locale default. When nothing
// parses the original string is returned unchanged: spreadsheet data is
// inconsistently formatted and one bad cell must never fail a listing.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	if isoDatePattern.MatchString(s) {
		return s
	}
	if m := dayFirstDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
		return t.Format("2006-01-02")
	}
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// MenuLineItem is a single parsed entry from a free-text menu cell.
type MenuLineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

var (
	colonQuantityPattern    = regexp.MustCompile(`^(.*?)\s*:\s*(\d+)$`)
	trailingQuantityPattern = regexp.MustCompile(`^(.*?)\s+(\d+)(?:\s+\S+)?$`)
)

// ParseMenuItems splits a free-text cell into line items. Quantity is
// encoded either as a ":<int>" suffix or as a trailing number optionally
// followed by one word ("Baileys Coffee 2 Reguler"); bare names default to
// quantity 1. The first matching pattern wins, so menu names that themselves
// end in digits can mis-parse. That ordering is deliberate and must not be
// tightened without product input.
func ParseMenuItems(cell string) []MenuLineItem {
	parts := strings.Split(cell, ",")
	items := make([]MenuLineItem, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m := colonQuantityPattern.FindStringSubmatch(part); m != nil {
			qty, _ := strconv.Atoi(m[2])
			items = append(items, MenuLineItem{Name: strings.TrimSpace(m[1]), Quantity: qty})
			continue
		}
		if m := trailingQuantityPattern.FindStringSubmatch(part); m != nil {
			qty, _ := strconv.Atoi(m[2])
			items = append(items, MenuLineItem{Name: strings.TrimSpace(m[1]), Quantity: qty})
			continue
		}
		items = append(items, MenuLineItem{Name: part, Quantity: 1})
	}
	return items
}

var priceCleanPattern = regexp.MustCompile(`(?i)^rp\.?\s*`)

// ParsePrice normalizes an Indonesian-formatted price cell ("Rp 25.000") to
// a decimal amount. Unparseable cells degrade to zero rather than failing
// the row.
func ParsePrice(cell string) decimal.Decimal {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero
	}
	s = priceCleanPattern.ReplaceAllString(s, "")
	// dots are thousand separators in the source locale, commas decimal marks
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeRow builds a Row from one raw grid row. Short rows are padded
// with empty strings; when a date column is resolved the canonicalized value
// is attached as DerivedDate. NormalizeRow never fails.
func NormalizeRow(index int, headers []string, fields []string, roles HeaderIndex) Row {
	row := Row{
		Index:  index,
		Fields: make(map[string]string, len(headers)),
	}
	for i, h := range headers {
		if i < len(fields) {
			row.Fields[h] = fields[i]
		} else {
			row.Fields[h] = ""
		}
	}
	if col := roles.Column(RoleDate); col >= 0 && col < len(headers) {
		derived := NormalizeDate(row.Fields[headers[col]])
		row.DerivedDate = &derived
	}
	return row
}

// IsBlank reports whether every field of a raw row is empty.
func IsBlank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

// IsHeaderEcho reports whether a data row repeats the header text in its
// name column. Some spreadsheets duplicate the header row inside the data
// range; customer listings filter those out.
func IsHeaderEcho(fields []string, headers []string, roles HeaderIndex) bool {
	col := roles.Column(RoleName)
	if col < 0 || col >= len(fields) || col >= len(headers) {
		return false
	}
	return fold.String(fields[col]) == fold.String(headers[col])
}

// CollapseWhitespace folds runs of whitespace to single spaces, used to
// normalize menu names before aggregation.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatQuantity renders a line item the way broadcast payloads expect it.
func (m MenuLineItem) String() string {
	return fmt.Sprintf("%s x%d", m.Name, m.Quantity)
}
