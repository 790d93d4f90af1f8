package textloc

// Selection is the caret of a note buffer plus the sticky range that a
// click leaves behind. Hovering moves the caret temporarily; leaving
// restores the sticky range.
//
// A Selection is not safe for concurrent use.
type Selection struct {
	caret    Range
	saved    Range
	hasSaved bool
}

// Select moves the caret to line lineno of text and, if sticky, also
// remembers it. If the line does not exist nothing changes and Select
// returns false.
func (s *Selection) Select(text string, lineno int, sticky bool) bool {
	r, err := Locate(text, lineno)
	if err != nil {
		return false
	}
	s.caret = r
	if sticky {
		s.saved = r
		s.hasSaved = true
	}
	return true
}

// Restore moves the caret back to the sticky range, or to the empty range
// at the start of the text if nothing was ever clicked. It reports whether
// a sticky range existed.
func (s *Selection) Restore() (Range, bool) {
	s.caret = s.saved
	return s.caret, s.hasSaved
}

// Caret returns the current caret range.
func (s *Selection) Caret() Range { return s.caret }

// SetCaret places the caret directly, as when the user types or clicks in
// the buffer. The sticky range is untouched.
func (s *Selection) SetCaret(r Range) { s.caret = r }

// Saved returns the sticky range, if any.
func (s *Selection) Saved() (Range, bool) { return s.saved, s.hasSaved }

// Clamp trims both ranges to fit a text of length n, as after an edit that
// shortened the buffer.
func (s *Selection) Clamp(n int) {
	s.caret = clamp(s.caret, n)
	s.saved = clamp(s.saved, n)
}

func clamp(r Range, n int) Range {
	r.Start = min(max(r.Start, 0), n)
	r.End = min(max(r.End, r.Start), n)
	return r
}
