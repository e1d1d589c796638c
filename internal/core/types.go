package core

import "time"

// Record is one validated roster entry extracted from a CSV data row.
// Both values are non-empty and already cleaned (trimmed, de-quoted).
type Record struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// Analysis is the read-only report produced by Analyze. Counts cover every
// line after the header; Samples and Duplicates are capped for display.
type Analysis struct {
	TotalLines       int              `json:"totalLines"`
	DataRows         int              `json:"dataRows"`
	BlankLines       int              `json:"blankLines"`
	ValidRecords     int              `json:"validRecords"`
	SkippedShort     int              `json:"skippedShort"`
	SkippedEmpty     int              `json:"skippedEmpty"`
	Samples          []Record         `json:"samples"`
	Duplicates       []DuplicateGroup `json:"duplicates"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`
}

// DuplicateGroup reports a username that appears on more than one data row.
type DuplicateGroup struct {
	Username    string `json:"username"`
	LineNumbers []int  `json:"lineNumbers"`
}

// Conversion is the immutable snapshot of one processed file. The service
// stores it under ID until ExpiresAt; frontends read it, never mutate it.
type Conversion struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"sizeHuman"`
	Records   []Record  `json:"records"`
	Output    string    `json:"output"`
	Analysis  *Analysis `json:"analysis"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
