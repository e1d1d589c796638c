package core

import (
	"strings"

	"github.com/pairlist/pairlist/internal/csv"
)

// Required column names as they appear in messages. Header matching is
// case-insensitive, and the display name column accepts the spellings in
// displayNameAliases.
const (
	ColumnUsername    = "username"
	ColumnDisplayName = "displayName"
)

// displayNameAliases are the accepted header spellings for the display
// name column, checked in order against the cleaned, lowercased header.
var displayNameAliases = []string{"displayname", "display_name", "display name"}

// MakeHeaderIndex builds a HeaderIndex from a tokenized header row.
// Cells are cleaned and lowercased; when a name repeats, the last
// occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, cell := range header {
		idx[csv.CleanHeader(cell)] = i
	}
	return idx
}

// resolveColumns looks up the positions of the two required columns.
// The bool result is false when either one is absent.
func resolveColumns(idx HeaderIndex) (userPos, displayPos int, ok bool) {
	userPos, ok = idx[ColumnUsername]
	if !ok {
		return 0, 0, false
	}
	for _, alias := range displayNameAliases {
		if pos, found := idx[alias]; found {
			return userPos, pos, true
		}
	}
	return 0, 0, false
}

// splitLines trims the input as a whole, splits it on newlines, and strips
// one trailing carriage return per line so CRLF files behave like LF files.
// Input that trims down to nothing yields no lines at all.
func splitLines(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Extract parses raw CSV text into ordered records.
//
// The first line is the header. Both required columns must resolve from it
// or extraction fails with *MissingColumnsError before any data row is
// looked at; input with no lines fails with ErrEmptyInput. Every following
// non-blank line is tokenized independently. Rows too short to cover both
// resolved positions are skipped, as are rows where either value cleans
// down to empty; neither case is an error. Records come back in file
// order, and an empty result with a nil error is a legitimate outcome.
//
// Extract is pure: same input, same output, no state left behind.
func Extract(text string) ([]Record, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}

	header := csv.SplitLine(lines[0])
	idx := MakeHeaderIndex(header)
	userPos, displayPos, ok := resolveColumns(idx)
	if !ok {
		cleaned := make([]string, len(header))
		for i, cell := range header {
			cleaned[i] = csv.CleanHeader(cell)
		}
		return nil, &MissingColumnsError{Header: cleaned}
	}

	var records []Record
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := csv.SplitLine(line)
		if userPos >= len(fields) || displayPos >= len(fields) {
			continue // short row, intentionally lenient
		}
		username := csv.CleanCell(fields[userPos])
		displayName := csv.CleanCell(fields[displayPos])
		if username == "" || displayName == "" {
			continue
		}
		records = append(records, Record{Username: username, DisplayName: displayName})
	}

	return records, nil
}
