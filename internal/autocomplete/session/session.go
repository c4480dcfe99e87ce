// Package session holds per-field autocomplete state: one Session per
// (field, target) pair, owned by an arena keyed on field identity.
package session

import (
	"github.com/dshills/mentions/internal/autocomplete/surface"
)

// Session is the live state of one autocomplete interaction for a single
// field and target. The zero value is not usable; see Field.Register.
//
// Invariants: Visible implies len(Matches) > 0, and while Matches is
// non-empty Highlighted is in [0, len(Matches)).
type Session struct {
	target string
	prefix rune

	prefixIndex int
	query       string
	matches     []string
	highlighted int
	visible     bool
	anchor      surface.Anchor
}

func newSession(target string, prefix rune) *Session {
	return &Session{target: target, prefix: prefix, prefixIndex: -1}
}

// Target returns the completion category.
func (s *Session) Target() string { return s.target }

// Prefix returns the trigger prefix.
func (s *Session) Prefix() rune { return s.prefix }

// PrefixIndex returns the rune offset of the active prefix, or -1 when hidden.
func (s *Session) PrefixIndex() int { return s.prefixIndex }

// Query returns the text between the prefix and the caret.
func (s *Session) Query() string { return s.query }

// Matches returns the current candidates. The slice must not be modified.
func (s *Session) Matches() []string { return s.matches }

// Highlighted returns the highlighted match index.
func (s *Session) Highlighted() int { return s.highlighted }

// Visible reports whether the dropdown should be shown.
func (s *Session) Visible() bool { return s.visible }

// Anchor returns the caret screen position recorded when matches were last
// computed.
func (s *Session) Anchor() surface.Anchor { return s.anchor }

// Show records a fresh scan result and makes the session visible. The
// highlight is kept and clamped into the new match set. Show with no matches
// hides the session instead.
func (s *Session) Show(prefixIndex int, query string, matches []string, anchor surface.Anchor) {
	if len(matches) == 0 {
		s.Hide()
		return
	}
	s.prefixIndex = prefixIndex
	s.query = query
	s.matches = matches
	s.anchor = anchor
	s.visible = true
	s.clamp()
}

// Hide resets the session to its idle state.
func (s *Session) Hide() {
	s.prefixIndex = -1
	s.query = ""
	s.matches = nil
	s.highlighted = 0
	s.visible = false
}

// Next highlights the following match, wrapping to the first.
func (s *Session) Next() {
	s.highlighted++
	s.clamp()
}

// Prev highlights the preceding match, wrapping to the last.
func (s *Session) Prev() {
	s.highlighted--
	s.clamp()
}

// Current returns the highlighted match. ok is false when the highlight does
// not address a match.
func (s *Session) Current() (match string, ok bool) {
	if s.highlighted < 0 || s.highlighted >= len(s.matches) {
		return "", false
	}
	return s.matches[s.highlighted], true
}

// clamp wraps the highlight cyclically: below zero goes to the last match,
// past the end goes to the first.
func (s *Session) clamp() {
	n := len(s.matches)
	if n == 0 {
		s.highlighted = 0
		return
	}
	if s.highlighted < 0 {
		s.highlighted = n - 1
	}
	if s.highlighted >= n {
		s.highlighted = 0
	}
}

// Snapshot returns an independent copy of the session state.
func (s *Session) Snapshot(field FieldID) Snapshot {
	var matches []string
	if len(s.matches) > 0 {
		matches = make([]string, len(s.matches))
		copy(matches, s.matches)
	}
	return Snapshot{
		Field:       field,
		Target:      s.target,
		Prefix:      s.prefix,
		PrefixIndex: s.prefixIndex,
		Query:       s.query,
		Matches:     matches,
		Highlighted: s.highlighted,
		Visible:     s.visible,
		Anchor:      s.anchor,
	}
}

// Snapshot is a copy of a Session handed to renderers and subscribers.
type Snapshot struct {
	Field       FieldID
	Target      string
	Prefix      rune
	PrefixIndex int
	Query       string
	Matches     []string
	Highlighted int
	Visible     bool
	Anchor      surface.Anchor
}

// HighlightedMatch returns the highlighted match, if any.
func (s Snapshot) HighlightedMatch() (string, bool) {
	if s.Highlighted < 0 || s.Highlighted >= len(s.Matches) {
		return "", false
	}
	return s.Matches[s.Highlighted], true
}
