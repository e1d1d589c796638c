package core

// errors.go defines the extraction failure types and the mapping from
// technical errors to user-friendly messages with codes for support
// reference.
//
// Error codes are grouped by category:
//
//	INPUT001 - Empty input: the file has no usable lines
//	INPUT002 - Missing columns: the header lacks username or displayName
//	INPUT003 - No valid rows: parsing succeeded but every row was excluded
//	FILE001  - File too large
//	FILE002  - Wrong file type (not a .csv)
//	FILE003  - Encoding problems
//	FILE004  - No file selected
//	CONV001  - Too many conversions in progress
//	CONV002  - Conversion cancelled
//	CONV003  - Conversion timed out
//	CONV004  - Conversion not found or expired
//	RATE001  - Request rate limited
//	ERR000   - Fallback for anything unmatched
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones. When a user
// reports ERR000, check the application logs for the original error.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned by Extract and Analyze when the input trims
// down to nothing: no header, no rows, nothing to resolve.
var ErrEmptyInput = errors.New("input is empty: no lines to parse")

// ErrConversionNotFound is returned by the service when a conversion ID is
// unknown, either never created or already expired.
var ErrConversionNotFound = errors.New("conversion not found")

// ErrFileTooLarge is returned by the service when an upload exceeds the
// configured size cap. Wrapped errors carry the concrete limit.
var ErrFileTooLarge = errors.New("file too large")

// MissingColumnsError is returned when the header row does not resolve
// both required columns. Header holds the cleaned header cells that were
// actually seen, for diagnostics.
type MissingColumnsError struct {
	Header []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("csv is missing required columns: header must contain %q and %q", ColumnUsername, ColumnDisplayName)
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. First match wins; keep specific patterns before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Input Errors (INPUT001-INPUT003)
	// These errors describe problems with the CSV content itself.
	// =========================================================================
	{
		pattern: "input is empty",
		msg: UserMessage{
			Message: "The file contains no data",
			Action:  "Upload a CSV file with a header row and at least one data row",
			Code:    "INPUT001",
		},
	},
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "The CSV header must contain username and displayName columns",
			Action:  "Add both columns to the first row (displayName also matches display_name or display name)",
			Code:    "INPUT002",
		},
	},
	{
		pattern: "no valid data rows",
		msg: UserMessage{
			Message: "No rows had values in both the username and displayName columns",
			Action:  "Check that data rows fill in both columns",
			Code:    "INPUT003",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE004)
	// These errors occur before the content is ever parsed.
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid file type",
		msg: UserMessage{
			Message: "Only .csv files are accepted",
			Action:  "Export your data as CSV and upload that file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file with UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a CSV file to upload",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Conversion Errors (CONV001-CONV004)
	// These errors occur around the conversion lifecycle.
	// =========================================================================
	{
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "The system is busy processing other files",
			Action:  "Wait a moment and try again",
			Code:    "CONV001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The conversion timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "CONV003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The conversion was cancelled",
			Action:  "Start a new conversion when ready",
			Code:    "CONV002",
		},
	},
	{
		pattern: "conversion not found",
		msg: UserMessage{
			Message: "Conversion not found",
			Action:  "It may have expired. Upload the file again",
			Code:    "CONV004",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches the known patterns (case-insensitive) and returns the first
// match, falling back to the generic ERR000 message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error matches a known pattern and can be
// shown to users as-is. The generic ERR000 fallback does not count.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message. The
// original error stays available for logging via Unwrap.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error into a UserError. Returns nil if err
// is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
