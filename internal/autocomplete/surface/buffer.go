package surface

import (
	"unicode"
	"unicode/utf8"

	"github.com/dshills/mentions/internal/input/key"
)

// Buffer is an in-memory TextSurface.
// The zero value is an empty buffer with the caret at 0.
type Buffer struct {
	text      []rune
	selStart  int
	selEnd    int
	multiline bool
}

// NewBuffer creates a single-line buffer holding text with the caret at
// the end.
func NewBuffer(text string) *Buffer {
	b := &Buffer{text: []rune(text)}
	b.selStart = len(b.text)
	b.selEnd = b.selStart
	return b
}

// NewMultilineBuffer creates a buffer that accepts newlines on Enter.
func NewMultilineBuffer(text string) *Buffer {
	b := NewBuffer(text)
	b.multiline = true
	return b
}

// Value returns the full text.
func (b *Buffer) Value() string {
	return string(b.text)
}

// Caret returns the selection start.
func (b *Buffer) Caret() int {
	return b.selStart
}

// Selection returns the selection start and end.
func (b *Buffer) Selection() (start, end int) {
	return b.selStart, b.selEnd
}

// Len returns the text length in runes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Multiline reports whether Enter inserts a newline.
func (b *Buffer) Multiline() bool {
	return b.multiline
}

// SetValue replaces the text and clamps the selection into it.
func (b *Buffer) SetValue(text string) {
	b.text = []rune(text)
	b.SetSelection(b.selStart, b.selEnd)
}

// SetSelection sets the selection, clamped to the text and ordered.
func (b *Buffer) SetSelection(start, end int) {
	start = b.clamp(start)
	end = b.clamp(end)
	if end < start {
		start, end = end, start
	}
	b.selStart = start
	b.selEnd = end
}

// SetCaret collapses the selection to offset.
func (b *Buffer) SetCaret(offset int) {
	b.SetSelection(offset, offset)
}

// Insert replaces the selection with s and places the caret after it.
func (b *Buffer) Insert(s string) {
	ins := []rune(s)
	out := make([]rune, 0, len(b.text)-(b.selEnd-b.selStart)+len(ins))
	out = append(out, b.text[:b.selStart]...)
	out = append(out, ins...)
	out = append(out, b.text[b.selEnd:]...)
	b.text = out
	b.SetCaret(b.selStart + len(ins))
}

// InsertRune inserts a single character at the caret.
func (b *Buffer) InsertRune(r rune) {
	if !utf8.ValidRune(r) {
		return
	}
	b.Insert(string(r))
}

// Backspace deletes the selection, or the rune before the caret.
func (b *Buffer) Backspace() {
	if b.selStart != b.selEnd {
		b.Insert("")
		return
	}
	if b.selStart == 0 {
		return
	}
	b.selStart--
	b.Insert("")
}

// Delete deletes the selection, or the rune after the caret.
func (b *Buffer) Delete() {
	if b.selStart != b.selEnd {
		b.Insert("")
		return
	}
	if b.selEnd >= len(b.text) {
		return
	}
	b.selEnd++
	b.Insert("")
}

// MoveCaret moves the caret by delta runes, collapsing the selection.
func (b *Buffer) MoveCaret(delta int) {
	b.SetCaret(b.selStart + delta)
}

// Home moves the caret to the start of the text.
func (b *Buffer) Home() {
	b.SetCaret(0)
}

// End moves the caret to the end of the text.
func (b *Buffer) End() {
	b.SetCaret(len(b.text))
}

// Apply performs the default edit for ev, the one a text field makes when
// the key is not suppressed. It reports whether ev was an editing or
// movement key.
func (b *Buffer) Apply(ev key.Event) bool {
	switch {
	case ev.IsSpace():
		b.InsertRune(' ')
	case ev.IsRune():
		if !unicode.IsPrint(ev.Rune) {
			return false
		}
		b.InsertRune(ev.Rune)
	case ev.Key == key.KeyBackspace:
		b.Backspace()
	case ev.Key == key.KeyDelete:
		b.Delete()
	case ev.Key == key.KeyLeft:
		b.MoveCaret(-1)
	case ev.Key == key.KeyRight:
		b.MoveCaret(1)
	case ev.Key == key.KeyHome:
		b.Home()
	case ev.Key == key.KeyEnd:
		b.End()
	case ev.Key == key.KeyEnter && b.multiline:
		b.InsertRune('\n')
	default:
		return false
	}
	return true
}

func (b *Buffer) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(b.text) {
		return len(b.text)
	}
	return offset
}
