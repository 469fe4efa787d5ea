package sheet

import (
	"regexp"
)

// Kind identifies which tab of a business's spreadsheet an operation targets.
// It determines both the fragment key used for gid resolution and the
// header-keyword table applied by the resolver.
type Kind string

const (
	KindMenu        Kind = "menu"
	KindReservation Kind = "reservation"
	KindPlace       Kind = "place"
	KindFAQ         Kind = "faq"
)

// DefaultGid is used when the stored URL carries no gid information at all.
const DefaultGid = "0"

// Reference locates a single tab inside a Google Sheets document.
type Reference struct {
	SpreadsheetID string
	Gid           string
}

// fragment keys, in kind-specific -> generic precedence order
var kindGidKeys = map[Kind][]string{
	KindMenu:        {"gid"},
	KindReservation: {"reservasiGid", "gid"},
	KindPlace:       {"tempatGid", "gid"},
	KindFAQ:         {"faqGid", "gid"},
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)

// ParseReference extracts the spreadsheet ID and the gid for the requested
// sheet kind from a stored, loosely structured URL string. Gid keys may
// appear in the query string or the fragment; a kind-specific key wins over
// the generic "gid", which wins over DefaultGid.
func ParseReference(rawURL string, kind Kind) (Reference, error) {
	m := spreadsheetIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return Reference{}, ErrInvalidSpreadsheetURL
	}

	ref := Reference{SpreadsheetID: m[1], Gid: DefaultGid}

	keys, ok := kindGidKeys[kind]
	if !ok {
		keys = []string{"gid"}
	}
	for _, key := range keys {
		if v := gidValue(rawURL, key); v != "" {
			ref.Gid = v
			break
		}
	}
	return ref, nil
}

// gidValue finds "<key>=<value>" after a '?', '#' or '&' separator. The
// stored URLs mix query and fragment conventions, so both are accepted.
func gidValue(rawURL, key string) string {
	re := regexp.MustCompile(`[?#&]` + regexp.QuoteMeta(key) + `=([^&#\s]+)`)
	if m := re.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}
