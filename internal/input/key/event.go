package key

import (
	"fmt"
	"time"
	"unicode"
)

// Source identifies where an observed key came from.
type Source uint8

const (
	// SourceKeyboard is a conventional key press.
	SourceKeyboard Source = iota

	// SourceComposition is a character produced by an input method
	// composition update (IME, some mobile keyboards).
	SourceComposition
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourceComposition:
		return "composition"
	default:
		return "unknown"
	}
}

// Event represents a single observed key or character.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Source is where the event came from.
	Source Source

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewCompositionEvent creates the event for the last character of a
// composition update. Composition never reports Shift.
// An empty composition yields KeyUnidentified.
func NewCompositionEvent(text string) Event {
	ev := Event{
		Key:       KeyUnidentified,
		Source:    SourceComposition,
		Timestamp: time.Now(),
	}
	runes := []rune(text)
	if len(runes) > 0 {
		ev.Key = KeyRune
		ev.Rune = runes[len(runes)-1]
	}
	return ev
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsRuneOf returns true if this is the character r.
func (e Event) IsRuneOf(r rune) bool {
	return e.IsRune() && e.Rune == r
}

// IsSpace returns true for the space bar, whether reported as a named key
// or as the ' ' character.
func (e Event) IsSpace() bool {
	return e.Key == KeySpace || e.IsRuneOf(' ')
}

// IsDeletion returns true for Backspace and Delete.
func (e Event) IsDeletion() bool {
	return e.Key == KeyBackspace || e.Key == KeyDelete
}

// IsEnter returns true if this is the Enter key.
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter
}

// IsTab returns true if this is the Tab key, with or without Shift.
func (e Event) IsTab() bool {
	return e.Key == KeyTab
}

// HasShift reports whether Shift was held. Composition events never do.
func (e Event) HasShift() bool {
	if e.Source == SourceComposition {
		return false
	}
	return e.Modifiers.HasShift()
}

// Equals returns true if two events represent the same key press.
// Timestamps and sources are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// String returns a canonical representation such as "@", "Tab", "Shift+Tab".
func (e Event) String() string {
	var name string
	switch {
	case e.IsSpace():
		name = "Space"
	case e.Key == KeyRune:
		name = string(e.Rune)
	default:
		name = e.Key.String()
	}

	mods := e.Modifiers
	if e.Key == KeyRune {
		// Shift is part of the character itself
		mods = mods.Without(ModShift)
	}
	if mods == ModNone {
		return name
	}
	return mods.String() + "+" + name
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s, Source: %s}",
		e.Key.String(), e.Rune, e.Modifiers.String(), e.Source.String())
}
