package core

// sanitize.go provides the input hygiene applied to every upload before
// its text reaches Extract:
//
//   - BOMSkippingReader: drops the UTF-8 BOM (0xEF 0xBB 0xBF) Windows
//     exports tend to carry
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with '?' on the fly
//   - CountingReader: records how many raw bytes were consumed
//   - SanitizeString: the one-shot string form, for small values like
//     filenames
//
// Use WrapUpload to layer the readers in the right order.

import (
	"io"
	"strings"
	"unicode/utf8"
)

// SanitizeString replaces invalid UTF-8 sequences in s with '?'. Valid
// strings come back unchanged without allocating.
func SanitizeString(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte('?')
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// UTF8Sanitizer wraps an io.Reader and replaces invalid UTF-8 sequences as
// data streams through, so downstream code can assume valid text without a
// second pass over the whole file.
//
// Invalid bytes become '?' rather than U+FFFD because the replacement must
// not be longer than the byte it replaces when rewriting in place.
type UTF8Sanitizer struct {
	reader io.Reader

	// pending holds bytes from the previous read that may be the start of
	// a multi-byte sequence split across read boundaries.
	pending []byte
}

// NewUTF8Sanitizer creates a sanitizing reader over r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader, sanitizing the buffer in place.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	// Replay bytes held back from the previous read.
	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset

	if n == 0 {
		return 0, err
	}

	// Fast path: most CSV data is plain ASCII.
	if isAllASCII(p[:n]) {
		return n, err
	}

	sanitized := s.sanitize(p[:n], err == io.EOF)
	return sanitized, err
}

// isAllASCII returns true if every byte is below 0x80.
func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes kept.
// Unless atEOF, an incomplete sequence at the end is moved to pending so
// the next read can complete it instead of mangling it.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if trailing := incompleteTrailingBytes(data); trailing > 0 {
				s.pending = append(s.pending, data[len(data)-trailing:]...)
				return len(data) - trailing
			}
		}
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if !atEOF && read+size >= len(data) && isIncompleteRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
		} else {
			copy(data[write:], data[read:read+size])
			write += size
			read += size
		}
	}

	return write
}

// incompleteTrailingBytes returns how many bytes at the end of data form
// the start of a multi-byte sequence that has not finished yet.
func incompleteTrailingBytes(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			// Start of a sequence; incomplete if it wants more bytes
			// than we have.
			if i < runeLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0 // ASCII byte, nothing dangling
		}
		// Continuation byte (10xxxxxx), keep walking back.
	}
	return 0
}

// runeLen returns the expected sequence length for a UTF-8 leading byte.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0 // continuation byte, not a start
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// isIncompleteRune reports whether data is the truncated start of a
// multi-byte sequence.
func isIncompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return runeLen(data[0]) > len(data)
}

// BOMSkippingReader wraps an io.Reader and drops a UTF-8 byte order mark
// if the stream starts with one.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	rest    []byte
}

// NewBOMSkippingReader creates a BOM-skipping reader over r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. The first call inspects the first three bytes
// and either drops them (BOM) or replays them before the rest of the stream.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if !(n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF) {
			r.rest = append(r.rest, buf[:n]...)
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(r.rest) > 0 {
		n := copy(p, r.rest)
		r.rest = r.rest[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

// CountingReader wraps an io.Reader and tracks bytes read. The service
// counts raw upload bytes with it, both for the size cap and for the
// reported file size.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader over r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapUpload layers the upload transforms in the required order: raw bytes
// are counted first, then the BOM is stripped, then the remaining stream
// is sanitized to valid UTF-8. The returned CountingReader exposes the raw
// byte count after the stream has been drained.
func WrapUpload(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	bom := NewBOMSkippingReader(counter)
	return NewUTF8Sanitizer(bom), counter
}
