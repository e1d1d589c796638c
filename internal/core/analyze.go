package core

import (
	"sort"
	"strings"
	"time"

	"github.com/pairlist/pairlist/internal/csv"
)

// Sample limits for analysis output.
const (
	maxRecordSamples    = 10
	maxDuplicateSamples = 10
)

// Analyze performs a read-only pass over raw CSV text and reports what an
// extraction would produce: per-category row counts, up to
// maxRecordSamples sample records, and usernames appearing on more than
// one row. It fails the same two ways Extract does and its ValidRecords
// count always equals len(Extract(text)).
func Analyze(text string) (*Analysis, error) {
	start := time.Now()

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

	a := &Analysis{TotalLines: len(lines)}

	// username -> 1-based line numbers in the trimmed input
	seen := make(map[string][]int)

	for i, line := range lines[1:] {
		lineNum := i + 2 // 1-indexed, after header

		if strings.TrimSpace(line) == "" {
			a.BlankLines++
			continue
		}
		a.DataRows++

		fields := csv.SplitLine(line)
		if userPos >= len(fields) || displayPos >= len(fields) {
			a.SkippedShort++
			continue
		}

		username := csv.CleanCell(fields[userPos])
		displayName := csv.CleanCell(fields[displayPos])
		if username == "" || displayName == "" {
			a.SkippedEmpty++
			continue
		}

		a.ValidRecords++
		seen[username] = append(seen[username], lineNum)
		if len(a.Samples) < maxRecordSamples {
			a.Samples = append(a.Samples, Record{Username: username, DisplayName: displayName})
		}
	}

	for username, nums := range seen {
		if len(nums) > 1 {
			a.Duplicates = append(a.Duplicates, DuplicateGroup{
				Username:    username,
				LineNumbers: nums,
			})
		}
	}
	// Map iteration order is random; sort by first occurrence so output is
	// stable, then cap.
	sort.Slice(a.Duplicates, func(i, j int) bool {
		return a.Duplicates[i].LineNumbers[0] < a.Duplicates[j].LineNumbers[0]
	})
	if len(a.Duplicates) > maxDuplicateSamples {
		a.Duplicates = a.Duplicates[:maxDuplicateSamples]
	}

	a.ProcessingTimeMs = time.Since(start).Milliseconds()
	return a, nil
}
