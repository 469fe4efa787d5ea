package sheet

import (
	"sort"
	"strconv"
)

// MenuCount is one aggregated menu entry in the response payload.
type MenuCount struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// AggregateMenuCounts folds the menu cells of the given rows into cumulative
// per-name quantities. Names are whitespace-collapsed before summing so
// "Latte " and "Latte" land in the same bucket.
func AggregateMenuCounts(rows []Row, menuHeader string) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		for _, item := range ParseMenuItems(row.Get(menuHeader)) {
			name := CollapseWhitespace(item.Name)
			if name == "" {
				continue
			}
			counts[name] += item.Quantity
		}
	}
	return counts
}

// SortedMenuCounts emits the aggregated counts sorted by name ascending.
// The comparison is case-sensitive byte order, matching what the dashboard
// has always displayed.
func SortedMenuCounts(counts map[string]int) []MenuCount {
	out := make([]MenuCount, 0, len(counts))
	for name, qty := range counts {
		out = append(out, MenuCount{Name: name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PlaceMatrix is the availability response for the place sheet: a pivoted
// per-place-per-date structure plus the flat raw cell map kept for
// diagnostics. Raw is keyed "<place>|<row index>" so rows sharing a date
// never shadow each other.
type PlaceMatrix struct {
	Dates  []string                  `json:"dates"`
	Places map[string]map[string]any `json:"places"`
	Raw    map[string]string         `json:"raw"`
}

// BuildPlaceMatrix pivots the place sheet. The first resolved date column
// (column 0 when none resolves) holds the date of each row; every other
// header is a place. Purely numeric cells become floats, anything else is
// kept verbatim as a textual status such as "Tersedia".
func BuildPlaceMatrix(grid [][]string, roles HeaderIndex) PlaceMatrix {
	matrix := PlaceMatrix{
		Dates:  []string{},
		Places: make(map[string]map[string]any),
		Raw:    make(map[string]string),
	}
	if len(grid) == 0 {
		return matrix
	}

	headers := grid[0]
	dateCol := roles.Column(RoleDate)
	if dateCol < 0 {
		dateCol = 0
	}

	seen := make(map[string]bool)
	for _, h := range headers {
		if h != "" {
			matrix.Places[h] = make(map[string]any)
		}
	}
	// the date column is not a place
	if dateCol < len(headers) {
		delete(matrix.Places, headers[dateCol])
	}

	for i, fields := range grid[1:] {
		if IsBlank(fields) {
			continue
		}
		rawDate := ""
		if dateCol < len(fields) {
			rawDate = fields[dateCol]
		}
		date := NormalizeDate(rawDate)
		if date == "" {
			continue
		}
		if !seen[date] {
			seen[date] = true
			matrix.Dates = append(matrix.Dates, date)
		}
		for col, header := range headers {
			if col == dateCol || header == "" {
				continue
			}
			cell := ""
			if col < len(fields) {
				cell = fields[col]
			}
			matrix.Raw[header+"|"+strconv.Itoa(i)] = cell
			if cell == "" {
				continue
			}
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				matrix.Places[header][date] = v
			} else {
				matrix.Places[header][date] = cell
			}
		}
	}

	sort.Strings(matrix.Dates)
	return matrix
}

// Listing assembles the passthrough row list for customer and reservation
// sheets: header echoes and all-blank rows are dropped, every surviving row
// keeps its original zero-based index.
func Listing(grid [][]string, roles HeaderIndex, dropHeaderEcho bool) []Row {
	if len(grid) == 0 {
		return []Row{}
	}
	headers := grid[0]
	rows := make([]Row, 0, len(grid)-1)
	for i, fields := range grid[1:] {
		if IsBlank(fields) {
			continue
		}
		if dropHeaderEcho && IsHeaderEcho(fields, headers, roles) {
			continue
		}
		rows = append(rows, NormalizeRow(i, headers, fields, roles))
	}
	return rows
}

// HeaderFor returns the header text of the column a role resolved to,
// empty string when the role is unresolved.
func HeaderFor(headers []string, roles HeaderIndex, role Role) string {
	col := roles.Column(role)
	if col < 0 || col >= len(headers) {
		return ""
	}
	return headers[col]
}

// FilterByExternalID keeps the rows whose external-id column equals the
// given value. When the role is unresolved no row matches.
func FilterByExternalID(rows []Row, headers []string, roles HeaderIndex, externalID string) []Row {
	header := HeaderFor(headers, roles, RoleExternalID)
	if header == "" {
		return nil
	}
	var out []Row
	for _, row := range rows {
		if row.Get(header) == externalID {
			out = append(out, row)
		}
	}
	return out
}
