// Package dropdown paints an autocomplete session as a list anchored to the
// caret.
//
// The painter is stateless: every call to Render derives the layout and the
// scroll window from the snapshot alone, so hosts can repaint from any
// published session event.
package dropdown

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/mentions/internal/autocomplete/session"
	"github.com/dshills/mentions/internal/renderer/backend"
	"github.com/dshills/mentions/internal/renderer/core"
)

// DefaultMaxItems is the number of rows shown when Options.MaxItems is unset.
const DefaultMaxItems = 6

// Theme holds the styles used to paint the list.
type Theme struct {
	Item      core.Style
	Highlight core.Style
	Border    core.Style
	Ghost     core.Style
}

// DefaultTheme renders the highlighted row in reverse video.
func DefaultTheme() Theme {
	return Theme{
		Item:      core.DefaultStyle(),
		Highlight: core.DefaultStyle().Reverse(),
		Border:    core.DefaultStyle().Dim(),
		Ghost:     core.DefaultStyle().Dim(),
	}
}

// Options configures a Dropdown.
type Options struct {
	MaxItems int
	Border   bool
	Theme    Theme
}

// Dropdown renders session snapshots onto a backend.
type Dropdown struct {
	maxItems int
	border   bool
	theme    Theme
}

// New creates a dropdown painter.
func New(opts Options) *Dropdown {
	d := &Dropdown{
		maxItems: opts.MaxItems,
		border:   opts.Border,
		theme:    opts.Theme,
	}
	if d.maxItems <= 0 {
		d.maxItems = DefaultMaxItems
	}
	return d
}

// Window returns the first visible row and the row count for a list of n
// matches with the given highlight, showing at most max rows. The
// highlighted row is always inside the window.
func Window(n, highlighted, max int) (first, count int) {
	if n <= 0 || max <= 0 {
		return 0, 0
	}
	count = min(n, max)
	highlighted = min(n-1, highlighted)
	if highlighted >= count {
		first = highlighted - count + 1
	}
	return first, count
}

// Layout is the computed placement of a dropdown.
type Layout struct {
	Rect  core.ScreenRect
	First int
	Count int
	Above bool
}

// Layout places the list for snap on a screen of the given size. The list
// opens below the caret line and flips above it when there is no room. A
// hidden session has an empty layout.
func (d *Dropdown) Layout(snap session.Snapshot, screenW, screenH int) Layout {
	if !snap.Visible || len(snap.Matches) == 0 {
		return Layout{}
	}

	first, count := Window(len(snap.Matches), snap.Highlighted, d.maxItems)

	width := 0
	for _, m := range snap.Matches {
		width = max(width, core.StringWidth(label(snap.Prefix, m)))
	}
	width += 2 // padding
	height := count
	if d.border {
		width += 2
		height += 2
	}
	width = min(width, screenW)

	lineH := max(snap.Anchor.Height, 1)
	top := snap.Anchor.Top + lineH
	above := false
	if top+height > screenH && snap.Anchor.Top-height >= 0 {
		top = snap.Anchor.Top - height
		above = true
	}
	if top+height > screenH {
		// Neither side fits; shrink below the caret.
		rows := screenH - top
		if d.border {
			rows -= 2
		}
		first, count = Window(len(snap.Matches), snap.Highlighted, min(count, max(rows, 0)))
		height = count
		if d.border && count > 0 {
			height += 2
		}
	}

	left := snap.Anchor.Left
	if left+width > screenW {
		left = max(screenW-width, 0)
	}

	return Layout{
		Rect:  core.RectFromSize(top, left, height, width),
		First: first,
		Count: count,
		Above: above,
	}
}

// Render paints snap and returns the region it covered. Nothing is painted
// for a hidden session.
func (d *Dropdown) Render(b backend.Backend, snap session.Snapshot) Layout {
	w, h := b.Size()
	lay := d.Layout(snap, w, h)
	if lay.Count == 0 {
		return lay
	}

	r := lay.Rect
	inner := r
	if d.border {
		d.drawBorder(b, r, len(snap.Matches), lay)
		inner = core.ScreenRect{Top: r.Top + 1, Left: r.Left + 1, Bottom: r.Bottom - 1, Right: r.Right - 1}
	}

	for i := 0; i < lay.Count; i++ {
		idx := lay.First + i
		style := d.theme.Item
		if idx == snap.Highlighted {
			style = d.theme.Highlight
		}
		y := inner.Top + i
		b.Fill(core.RectFromSize(y, inner.Left, 1, inner.Width()), core.NewStyledCell(' ', style))
		text := core.Truncate(label(snap.Prefix, snap.Matches[idx]), inner.Width()-2, "…")
		backend.DrawString(b, inner.Left+1, y, text, style)
	}
	return lay
}

func (d *Dropdown) drawBorder(b backend.Backend, r core.ScreenRect, total int, lay Layout) {
	st := d.theme.Border
	right, bottom := r.Right-1, r.Bottom-1

	for x := r.Left + 1; x < right; x++ {
		b.SetCell(x, r.Top, core.NewStyledCell('─', st))
		b.SetCell(x, bottom, core.NewStyledCell('─', st))
	}
	for y := r.Top + 1; y < bottom; y++ {
		b.SetCell(r.Left, y, core.NewStyledCell('│', st))
		b.SetCell(right, y, core.NewStyledCell('│', st))
	}
	b.SetCell(r.Left, r.Top, core.NewStyledCell('┌', st))
	b.SetCell(right, r.Top, core.NewStyledCell('┐', st))
	b.SetCell(r.Left, bottom, core.NewStyledCell('└', st))
	b.SetCell(right, bottom, core.NewStyledCell('┘', st))

	// Position indicator when the list scrolls.
	if total > lay.Count {
		pos := fmt.Sprintf(" %d/%d ", lay.First+lay.Count, total)
		if x := right - core.StringWidth(pos); x > r.Left {
			backend.DrawString(b, x, bottom, pos, st)
		}
	}
}

// Ghost returns the part of the highlighted match that typing would still
// add, for inline preview after the caret. It is empty unless the match
// starts with the query.
func Ghost(snap session.Snapshot) string {
	m, ok := snap.HighlightedMatch()
	if !ok {
		return ""
	}
	q := cases.Lower(language.Und).String(snap.Query)
	if !strings.HasPrefix(m, q) {
		return ""
	}
	return m[len(q):]
}

func label(prefix rune, match string) string {
	return string(prefix) + match
}
