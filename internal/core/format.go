package core

import (
	"fmt"
	"io"
	"strings"
)

// pairSeparator joins flattened pairs. The newline after the comma keeps
// pasted output one pair per line.
const pairSeparator = ",\n"

// Flatten renders records as username@displayName pairs joined by ",\n".
// Zero records yield an empty string.
func Flatten(records []Record) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString(pairSeparator)
		}
		b.WriteString(r.Username)
		b.WriteByte('@')
		b.WriteString(r.DisplayName)
	}
	return b.String()
}

// FlattenTo writes the same form as Flatten to w, without building the
// whole string in memory. Used for plain-text download responses.
func FlattenTo(w io.Writer, records []Record) error {
	for i, r := range records {
		sep := ""
		if i > 0 {
			sep = pairSeparator
		}
		if _, err := fmt.Fprintf(w, "%s%s@%s", sep, r.Username, r.DisplayName); err != nil {
			return fmt.Errorf("write pair %d: %w", i, err)
		}
	}
	return nil
}
