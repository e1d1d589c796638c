package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// MakeHeaderIndex Tests
// ----------------------------------------------------------------------------

func TestMakeHeaderIndex(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   HeaderIndex
	}{
		{
			name:   "lowercases and positions",
			header: []string{"Username", "DisplayName"},
			want:   HeaderIndex{"username": 0, "displayname": 1},
		},
		{
			name:   "cleans cells before indexing",
			header: []string{` "Username" `, " Display Name "},
			want:   HeaderIndex{"username": 0, "display name": 1},
		},
		{
			name:   "duplicate name keeps last position",
			header: []string{"username", "extra", "USERNAME"},
			want:   HeaderIndex{"username": 2, "extra": 1},
		},
		{
			name:   "empty header row",
			header: []string{""},
			want:   HeaderIndex{"": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeHeaderIndex(tt.header)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MakeHeaderIndex(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Extract Tests
// ----------------------------------------------------------------------------

func TestExtract_TwoRowHappyPath(t *testing.T) {
	input := "username,displayName\njohn_doe,John Doe\njane_smith,Jane Smith"

	records, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := []Record{
		{Username: "john_doe", DisplayName: "John Doe"},
		{Username: "jane_smith", DisplayName: "Jane Smith"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestExtract_HeaderResolution(t *testing.T) {
	tests := []struct {
		name   string
		header string
		wantOK bool
	}{
		// Case-insensitive matching
		{name: "lowercase pair", header: "username,displayname", wantOK: true},
		{name: "camel case", header: "username,displayName", wantOK: true},
		{name: "capitalized with underscore", header: "Username,Display_Name", wantOK: true},
		{name: "all caps", header: "USERNAME,DISPLAYNAME", wantOK: true},

		// All accepted display name spellings
		{name: "display_name spelling", header: "username,display_name", wantOK: true},
		{name: "display space name spelling", header: `username,"display name"`, wantOK: true},

		// Quoted and padded headers still resolve
		{name: "quoted padded header", header: ` "Username" , "DisplayName" `, wantOK: true},

		// Missing either column fails
		{name: "email instead of display name", header: "username,email", wantOK: false},
		{name: "display name only", header: "displayname,email", wantOK: false},
		{name: "username only", header: "username", wantOK: false},
		{name: "unrelated columns", header: "id,first,last", wantOK: false},
		{name: "misspelled display column", header: "username,displaynames", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.header + "\njohn_doe,John Doe"
			records, err := Extract(input)

			if tt.wantOK {
				if err != nil {
					t.Fatalf("Extract returned error: %v", err)
				}
				return
			}

			var missing *MissingColumnsError
			if !errors.As(err, &missing) {
				t.Fatalf("expected *MissingColumnsError, got %v", err)
			}
			if records != nil {
				t.Errorf("expected no records on failure, got %v", records)
			}
		})
	}
}

func TestExtract_MissingColumnsErrorNamesBoth(t *testing.T) {
	_, err := Extract("username,email\njohn,j@example.com")

	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingColumnsError, got %v", err)
	}

	msg := err.Error()
	if !strings.Contains(msg, "username") {
		t.Errorf("error %q does not name the username column", msg)
	}
	if !strings.Contains(msg, "displayName") {
		t.Errorf("error %q does not name the displayName column", msg)
	}

	wantHeader := []string{"username", "email"}
	if !reflect.DeepEqual(missing.Header, wantHeader) {
		t.Errorf("Header = %q, want %q", missing.Header, wantHeader)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "spaces only", input: "   "},
		{name: "newlines only", input: "\n\n\n"},
		{name: "mixed whitespace", input: " \t \r\n \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Extract(tt.input)
			if !errors.Is(err, ErrEmptyInput) {
				t.Errorf("expected ErrEmptyInput, got %v", err)
			}
			if records != nil {
				t.Errorf("expected no records, got %v", records)
			}
		})
	}
}

func TestExtract_RowFiltering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Record
	}{
		{
			name:  "header only is success with zero records",
			input: "username,displayName",
			want:  nil,
		},
		{
			name:  "short row is skipped silently",
			input: "username,displayName\njohn_doe\njane_smith,Jane Smith",
			want:  []Record{{Username: "jane_smith", DisplayName: "Jane Smith"}},
		},
		{
			name:  "row with empty display name is excluded",
			input: "username,displayName\njohn_doe,\njane_smith,Jane Smith",
			want:  []Record{{Username: "jane_smith", DisplayName: "Jane Smith"}},
		},
		{
			name:  "row with empty username is excluded",
			input: "username,displayName\n,John Doe\njane_smith,Jane Smith",
			want:  []Record{{Username: "jane_smith", DisplayName: "Jane Smith"}},
		},
		{
			name:  "row with whitespace-only value is excluded",
			input: "username,displayName\njohn_doe,   \njane_smith,Jane Smith",
			want:  []Record{{Username: "jane_smith", DisplayName: "Jane Smith"}},
		},
		{
			name:  "blank lines between rows are skipped",
			input: "username,displayName\n\njohn_doe,John Doe\n   \njane_smith,Jane Smith\n",
			want: []Record{
				{Username: "john_doe", DisplayName: "John Doe"},
				{Username: "jane_smith", DisplayName: "Jane Smith"},
			},
		},
		{
			name:  "unterminated quote folds row into one field and skips it",
			input: "username,displayName\n\"john_doe,John Doe\njane_smith,Jane Smith",
			want:  []Record{{Username: "jane_smith", DisplayName: "Jane Smith"}},
		},
		{
			name:  "all rows excluded is success with zero records",
			input: "username,displayName\njohn_doe,\n,John Doe\nshort",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_FieldCleaning(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Record
	}{
		{
			name:  "quoted comma stays in value",
			input: "username,displayName\n\"doe, john\",John Doe",
			want:  []Record{{Username: "doe, john", DisplayName: "John Doe"}},
		},
		{
			name:  "values are trimmed",
			input: "username,displayName\n  john_doe  ,  John Doe  ",
			want:  []Record{{Username: "john_doe", DisplayName: "John Doe"}},
		},
		{
			name:  "extra columns are ignored",
			input: "id,username,email,displayName\n7,john_doe,j@example.com,John Doe",
			want:  []Record{{Username: "john_doe", DisplayName: "John Doe"}},
		},
		{
			name:  "column order does not matter",
			input: "displayName,username\nJohn Doe,john_doe",
			want:  []Record{{Username: "john_doe", DisplayName: "John Doe"}},
		},
		{
			name:  "value case is preserved",
			input: "username,displayName\nJohn_Doe,JOHN DOE",
			want:  []Record{{Username: "John_Doe", DisplayName: "JOHN DOE"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_CRLFInput(t *testing.T) {
	input := "username,displayName\r\njohn_doe,John Doe\r\njane_smith,Jane Smith\r\n"

	records, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := []Record{
		{Username: "john_doe", DisplayName: "John Doe"},
		{Username: "jane_smith", DisplayName: "Jane Smith"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestExtract_DuplicateHeaderLastWins(t *testing.T) {
	// Two username columns: the second one is the live position.
	input := "username,displayName,username\nstale,John Doe,john_doe"

	records, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := []Record{{Username: "john_doe", DisplayName: "John Doe"}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	input := "username,displayName\n\"doe, john\",John Doe\n\njane_smith,Jane Smith\nshort"

	first, err1 := Extract(input)
	second, err2 := Extract(input)

	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction disagrees: %v vs %v", first, second)
	}
}

func TestExtract_OrderPreserved(t *testing.T) {
	var b strings.Builder
	b.WriteString("username,displayName\n")
	names := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for _, n := range names {
		b.WriteString(n + "," + strings.ToUpper(n) + "\n")
	}

	records, err := Extract(b.String())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != len(names) {
		t.Fatalf("got %d records, want %d", len(records), len(names))
	}
	for i, n := range names {
		if records[i].Username != n {
			t.Errorf("record %d username = %q, want %q", i, records[i].Username, n)
		}
	}
}
