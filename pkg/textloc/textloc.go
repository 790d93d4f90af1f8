// Package textloc maps between line numbers and character ranges of the
// note buffer.
//
// A link remembers the line of the notes it was parsed from. Clicking the
// link selects that line; moving the caret can be mapped back to the line
// it sits on. Offsets are byte offsets into the Go string, and lines are
// split on "\n" only. Browser text widgets count UTF-16 code units instead;
// [Range.UTF16] converts a range for them.
package textloc

import (
	"strings"
	"unicode/utf16"

	"github.com/sboosali/notegraph/pkg/errors"
)

// Range is a half-open byte range [Start, End) of a text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered.
func (r Range) Len() int { return r.End - r.Start }

// Slice returns the covered part of text.
func (r Range) Slice(text string) string { return text[r.Start:r.End] }

// UTF16 converts a byte range of text into UTF-16 code units, the offsets
// a browser textarea uses. Runes outside the BMP count twice.
func (r Range) UTF16(text string) Range {
	start := utf16Len(text[:r.Start])
	return Range{Start: start, End: start + utf16Len(text[r.Start:r.End])}
}

// FromUTF16 converts a UTF-16 code unit offset into a byte offset of text.
// Offsets past the end, or inside a surrogate pair, return an OUT_OF_RANGE
// error.
func FromUTF16(text string, units int) (int, error) {
	if units < 0 {
		return 0, errors.New(errors.ErrCodeOutOfRange, "offset %d out of range", units)
	}
	n := 0
	for i, r := range text {
		if n == units {
			return i, nil
		}
		if n > units {
			break
		}
		n += runeLen16(r)
	}
	if n == units {
		return len(text), nil
	}
	return 0, errors.New(errors.ErrCodeOutOfRange, "offset %d out of range [0, %d]", units, utf16Len(text))
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeLen16(r)
	}
	return n
}

func runeLen16(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Lines splits text on "\n". The result always has at least one element.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}

// Locate returns the range of line lineno within text, excluding its line
// terminator. It returns an OUT_OF_RANGE error for a negative lineno or one
// past the last line.
func Locate(text string, lineno int) (Range, error) {
	lines := Lines(text)
	if lineno < 0 || lineno >= len(lines) {
		return Range{}, errors.New(errors.ErrCodeOutOfRange, "line %d out of range [0, %d)", lineno, len(lines))
	}

	start := 0
	for _, line := range lines[:lineno] {
		start += len(line) + 1
	}
	return Range{Start: start, End: start + len(lines[lineno])}, nil
}

// LineAt returns the line containing offset. An offset equal to the end of
// a line, i.e. on its terminator, belongs to that line. Offsets outside
// [0, len(text)] return an OUT_OF_RANGE error.
func LineAt(text string, offset int) (int, error) {
	if offset < 0 || offset > len(text) {
		return 0, errors.New(errors.ErrCodeOutOfRange, "offset %d out of range [0, %d]", offset, len(text))
	}
	return strings.Count(text[:offset], "\n"), nil
}

// IsOutOfRange reports whether err came from a lookup outside the text.
func IsOutOfRange(err error) bool {
	return errors.Is(err, errors.ErrCodeOutOfRange)
}
