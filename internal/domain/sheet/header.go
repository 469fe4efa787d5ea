package sheet

import (
	"strings"

	"golang.org/x/text/cases"
)

// Role is the semantic meaning assigned to a spreadsheet column.
type Role string

const (
	RoleName       Role = "name"
	RolePhone      Role = "phone"
	RoleExternalID Role = "externalId"
	RoleDate       Role = "date"
	RoleMenu       Role = "menu"
	RolePrice      Role = "price"
	RoleQuestion   Role = "question"
	RoleAnswer     Role = "answer"
)

// HeaderIndex maps a role to its zero-based column position, or -1 when the
// role could not be resolved. Consumers must treat -1 as "field unavailable",
// not as an error; only mandatory roles escalate (see ResolveRequired).
type HeaderIndex map[Role]int

// Column returns the resolved column for a role, -1 when absent.
func (h HeaderIndex) Column(role Role) int {
	if idx, ok := h[role]; ok {
		return idx
	}
	return -1
}

// headerRule matches a role against human-authored, mixed-language headers.
// Matching is case-insensitive substring search; excludes disambiguate
// columns whose names are substrings of each other ("ID WA" vs "NO WA").
type headerRule struct {
	role     Role
	keywords []string
	excludes []string
	// prefer runs a first pass over headers that also contain one of these
	// keywords before falling back to any keyword match.
	prefer []string
}

var headerRules = []headerRule{
	{role: RoleName, keywords: []string{"nama"}, excludes: []string{"jumlah"}},
	{role: RolePhone, keywords: []string{"no wa", "nomor wa", "no. wa"}, excludes: []string{"id"}},
	{role: RoleExternalID, keywords: []string{"id wa", "id. wa"}},
	{role: RoleDate, keywords: []string{"tanggal", "date", "tgl"}, prefer: []string{"reservasi", "booking"}},
	{role: RoleMenu, keywords: []string{"menu", "pesanan"}, excludes: []string{"jumlah"}},
	{role: RolePrice, keywords: []string{"harga", "price"}},
	{role: RoleQuestion, keywords: []string{"pertanyaan", "question"}},
	{role: RoleAnswer, keywords: []string{"jawaban", "answer"}},
}

// kindRoles lists the roles each sheet kind resolves.
var kindRoles = map[Kind][]Role{
	KindMenu:        {RoleName, RolePhone, RoleExternalID, RoleMenu, RolePrice},
	KindReservation: {RoleName, RolePhone, RoleExternalID, RoleDate, RoleMenu},
	KindPlace:       {RoleDate},
	KindFAQ:         {RoleQuestion, RoleAnswer},
}

var fold = cases.Fold()

// ResolveHeaders computes the role -> column mapping for a sheet kind from
// the (already trimmed) header row.
func ResolveHeaders(headers []string, kind Kind) HeaderIndex {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = fold.String(h)
	}

	index := make(HeaderIndex)
	roles, ok := kindRoles[kind]
	if !ok {
		roles = []Role{RoleName, RolePhone, RoleExternalID, RoleDate, RoleMenu}
	}
	for _, role := range roles {
		index[role] = resolveRole(folded, role)
	}
	return index
}

// ResolveRequired resolves headers and enforces that the mandatory roles are
// present, returning a MissingColumnError carrying the full header list when
// one is not.
func ResolveRequired(headers []string, kind Kind, required ...Role) (HeaderIndex, error) {
	index := ResolveHeaders(headers, kind)
	for _, role := range required {
		if index.Column(role) < 0 {
			return nil, &MissingColumnError{Role: role, Headers: headers}
		}
	}
	return index, nil
}

func resolveRole(folded []string, role Role) int {
	var rule *headerRule
	for i := range headerRules {
		if headerRules[i].role == role {
			rule = &headerRules[i]
			break
		}
	}
	if rule == nil {
		return -1
	}

	// preference pass: headers that additionally carry a preferred keyword
	if len(rule.prefer) > 0 {
		for i, h := range folded {
			if matchesRule(h, rule) && containsAny(h, rule.prefer) {
				return i
			}
		}
	}
	for i, h := range folded {
		if matchesRule(h, rule) {
			return i
		}
	}
	return -1
}

func matchesRule(folded string, rule *headerRule) bool {
	if !containsAny(folded, rule.keywords) {
		return false
	}
	return !containsAny(folded, rule.excludes)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
