package termfield

import (
	"github.com/dshills/mentions/internal/autocomplete/surface"
	"github.com/dshills/mentions/internal/renderer/backend"
	"github.com/dshills/mentions/internal/renderer/core"
)

// Field is a single-line text input placed on one screen row. It scrolls
// horizontally to keep the caret in view.
type Field struct {
	*surface.Buffer

	x, y, width int
	offset      int // first visible rune
}

// NewField creates a field holding text with the caret at the end.
func NewField(text string) *Field {
	return &Field{Buffer: surface.NewBuffer(text), width: 1}
}

// Place sets the field's screen position and width in columns.
func (f *Field) Place(x, y, width int) {
	f.x, f.y, f.width = x, y, max(width, 1)
}

// Anchor returns the screen position of caret, scrolling the field first
// so the caret is visible.
func (f *Field) Anchor(caret int) surface.Anchor {
	f.scroll(caret)
	runes := []rune(f.Value())
	caret = min(max(caret, f.offset), len(runes))
	return surface.Anchor{
		Left:   f.x + core.StringWidth(string(runes[f.offset:caret])),
		Top:    f.y,
		Height: 1,
	}
}

// scroll moves the window so caret lies within it, leaving one column for
// the cursor.
func (f *Field) scroll(caret int) {
	runes := []rune(f.Value())
	caret = min(max(caret, 0), len(runes))
	f.offset = min(f.offset, len(runes))

	if caret < f.offset {
		f.offset = caret
	}
	for f.offset < caret && core.StringWidth(string(runes[f.offset:caret])) >= f.width {
		f.offset++
	}
}

// Draw paints the visible part of the text and returns the cursor column.
func (f *Field) Draw(b backend.Backend, style core.Style) int {
	anchor := f.Anchor(f.Caret())

	runes := []rune(f.Value())
	end := f.x + f.width
	x := f.x
	for _, r := range runes[f.offset:] {
		w := core.RuneWidth(r)
		if x+w > end {
			break
		}
		b.SetCell(x, f.y, core.NewStyledCell(r, style))
		if w == 2 {
			b.SetCell(x+1, f.y, core.ContinuationCell())
		}
		x += w
	}
	return anchor.Left
}

// Locator positions the dropdown for Fields. Other surfaces get a zero
// anchor.
var Locator = surface.LocatorFunc(func(s surface.TextSurface, caret int) surface.Anchor {
	if f, ok := s.(*Field); ok {
		return f.Anchor(caret)
	}
	return surface.Anchor{}
})
