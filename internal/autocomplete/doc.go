// Package autocomplete implements inline prefix-triggered completion for
// plain text fields, such as @user mentions and ~group references.
//
// The Engine is a headless state machine. A host forwards key events for a
// text surface:
//
//	suppress := eng.KeyDown(field, ev) // before the host applies the key
//	// ... host inserts the character or moves the caret unless suppress ...
//	eng.KeyUp(field, ev)               // after the edit is visible in field
//
// The first time a trigger prefix is typed on a field the engine registers
// that (field, target) pair and from then on rescans the text on every
// KeyUp. A scan finds the nearest prefix before the caret, extracts the
// query, filters the trigger's values, and updates the session. Tab and
// Shift+Tab cycle the highlight; Enter splices the highlighted match into
// the field and moves the caret past it.
//
// Renderers read Snapshot or Active after each call, or subscribe to the
// autocomplete.** topics on an event.Bus passed with WithBus.
//
// An Engine is not safe for concurrent use. Hosts deliver events from a
// single goroutine, in order.
package autocomplete
