// Package core provides the business logic for CSV roster conversion.
//
// This package is the heart of the converter, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// terminal frontends, or tests without modification.
//
// # Extraction
//
// [Extract] consumes the raw text of a CSV file and produces ordered
// [Record] values. The first line is the header; the username and display
// name columns are resolved from it case-insensitively (the display name
// column accepts a small set of spellings). Data rows that do not cover
// both columns, or that clean down to an empty value in either, are
// excluded silently rather than failing the whole file:
//
//	records, err := core.Extract(fileText)
//	if err != nil {
//	    // core.ErrEmptyInput or *core.MissingColumnsError
//	}
//	out := core.Flatten(records)
//
// # Flattening
//
// [Flatten] joins records into the copy-paste form, one username@displayName
// pair per line, comma separated. [FlattenTo] streams the same form to an
// io.Writer for download responses.
//
// # Analysis
//
// [Analyze] runs a read-only pass over the same input and reports counts,
// capped sample records, and duplicate usernames without keeping the full
// record set. Frontends use it to show what a conversion produced.
//
// # Conversion Service
//
// [Service] ties the pieces together for stateful frontends: it reads an
// upload (size capped, UTF-8 sanitized), extracts, flattens, analyzes, and
// keeps the resulting [Conversion] snapshot in memory under a fresh ID
// until its retention window lapses. Snapshots are immutable; a new file
// replaces, never merges.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - INPUT001-INPUT003: input errors (empty file, missing columns, no rows)
//   - FILE001-FILE004: file errors (size, type, encoding, read failures)
//   - CONV001-CONV004: conversion errors (busy, cancelled, timeout, not found)
package core
