// Package surface defines the text editing surface the autocomplete engine
// reads and mutates, and the caret positioning service it consults.
//
// All offsets are rune offsets into Value.
package surface

import "reflect"

// TextSurface is a plain single-line or multi-line text editing surface.
type TextSurface interface {
	// Value returns the full text.
	Value() string

	// Caret returns the caret offset, the start of the current selection.
	Caret() int

	// SetValue replaces the full text.
	SetValue(text string)

	// SetSelection sets the selection start and end offsets.
	// start == end collapses the selection to a caret.
	SetSelection(start, end int)
}

// PlainTextSurface is implemented by surfaces that can tell whether they
// currently behave as plain text. Rich text regions report false and are
// ignored by the engine.
type PlainTextSurface interface {
	PlainText() bool
}

// Anchor is the screen position of the caret, in the host's coordinates.
// The engine stores it for the renderer and never interprets it.
type Anchor struct {
	Left   int
	Top    int
	Height int
}

// CaretLocator computes the caret's screen Anchor for a surface.
type CaretLocator interface {
	Locate(s TextSurface, caret int) Anchor
}

// LocatorFunc adapts a function to CaretLocator.
type LocatorFunc func(s TextSurface, caret int) Anchor

// Locate calls f.
func (f LocatorFunc) Locate(s TextSurface, caret int) Anchor {
	return f(s, caret)
}

// NoLocator reports a zero anchor for every caret.
var NoLocator = LocatorFunc(func(TextSurface, int) Anchor { return Anchor{} })

// Accept returns target as a TextSurface when it is one the engine can
// work with: it implements TextSurface, does not opt out of plain text, and
// has a comparable dynamic type so it can key the session store.
func Accept(target any) (TextSurface, bool) {
	s, ok := target.(TextSurface)
	if !ok || s == nil {
		return nil, false
	}
	if p, ok := target.(PlainTextSurface); ok && !p.PlainText() {
		return nil, false
	}
	if !reflect.TypeOf(target).Comparable() {
		return nil, false
	}
	return s, true
}
