// Package csv provides the raw CSV mechanics shared by every frontend:
// splitting one line into fields and cleaning individual cells. The package
// holds no state and performs no I/O; callers feed it text one line at a
// time and decide themselves what the fields mean.
package csv

import "strings"

// SplitLine splits a single CSV line into its fields.
//
// The scan tracks one piece of state, whether the cursor is inside a
// double-quoted region. A double quote toggles that state and is never
// copied into the field. A comma inside quotes is literal; a comma outside
// quotes ends the current field. The buffer in progress is always emitted
// at end of line, so a trailing comma yields a final empty field and an
// empty line yields a single empty field.
//
// Unbalanced quotes are tolerated: the scan simply finishes in whatever
// state it reached, without error. Doubled quotes ("") are not an escape
// sequence; they toggle the state twice and contribute no characters, so
// fields can never contain a literal double quote. Fields are returned
// exactly as scanned, with no trimming. Use CleanCell for that.
func SplitLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch ch {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if inQuotes {
				field.WriteRune(ch)
			} else {
				fields = append(fields, field.String())
				field.Reset()
			}
		default:
			field.WriteRune(ch)
		}
	}

	return append(fields, field.String())
}

// CleanCell normalizes a single cell value: surrounding whitespace is
// trimmed, then any surrounding double quotes are stripped. Interior
// characters are untouched, so "doe, john" keeps its comma and inner
// spacing.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return s
}

// CleanHeader normalizes a header cell for column matching: CleanCell
// plus lowercasing. Header comparison is case-insensitive everywhere, so
// all lookups go through this.
func CleanHeader(s string) string {
	return strings.ToLower(CleanCell(s))
}
