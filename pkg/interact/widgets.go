package interact

import "github.com/sboosali/notegraph/pkg/textloc"

// Buffer is the editable note text with a caret.
type Buffer interface {
	Text() string
	SetText(string)
	Select(textloc.Range)
}

// Display is a read-only line of text shown to the user.
type Display interface {
	Text() string
	SetText(string)
}

// Actions are the network-backed operations a controller can trigger.
// Implementations are expected to return quickly and deliver results
// asynchronously.
type Actions interface {
	Redraw(notes string)
	Query(query string)
}

// TextBuffer is an in-memory Buffer.
type TextBuffer struct {
	text  string
	caret textloc.Range
}

// NewTextBuffer returns a buffer holding text with the caret at the start.
func NewTextBuffer(text string) *TextBuffer { return &TextBuffer{text: text} }

func (b *TextBuffer) Text() string { return b.text }

// SetText replaces the text and pulls the caret back inside it.
func (b *TextBuffer) SetText(s string) {
	b.text = s
	b.caret.Start = min(b.caret.Start, len(s))
	b.caret.End = min(b.caret.End, len(s))
}

func (b *TextBuffer) Select(r textloc.Range) { b.caret = r }

// Caret returns the selected range.
func (b *TextBuffer) Caret() textloc.Range { return b.caret }

// Selected returns the selected text.
func (b *TextBuffer) Selected() string { return b.caret.Slice(b.text) }

// Label is an in-memory Display.
type Label struct{ text string }

// NewLabel returns a label showing text.
func NewLabel(text string) *Label { return &Label{text: text} }

func (l *Label) Text() string     { return l.text }
func (l *Label) SetText(s string) { l.text = s }
