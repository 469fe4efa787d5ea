package sheet

import (
	"strings"
)

// Tokenize converts raw CSV text into a grid of trimmed string fields using a
// single left-to-right scan. Quoted fields may contain commas, newlines and
// escaped quotes (""). Rows whose fields are all empty are dropped, which also
// absorbs trailing-newline artifacts. The tokenizer never fails: stray quote
// imbalance in user-authored data degrades instead of erroring.
func Tokenize(input string) [][]string {
	var grid [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	closeField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	closeRow := func() {
		closeField()
		for _, f := range row {
			if f != "" {
				grid = append(grid, row)
				break
			}
		}
		row = nil
	}

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(input) && input[i+1] == '"' {
				// escaped quote inside a quoted field
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			closeField()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			closeRow()
			if ch == '\r' && i+1 < len(input) && input[i+1] == '\n' {
				i++ // CRLF
			}
		default:
			field.WriteByte(ch)
		}
	}

	// flush any pending field/row with the same non-empty-row rule
	if field.Len() > 0 || len(row) > 0 {
		closeRow()
	}

	return grid
}

// QuoteField re-serializes a single field for CSV output, quoting only when
// the content requires it.
func QuoteField(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
