// Package topic provides hierarchical topic names and wildcard matching for
// the event bus.
//
// Topics use dot notation:
//
//	autocomplete.session.shown
//	autocomplete.field.registered
//
// Two wildcards are supported in subscription patterns:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	autocomplete.session.*   matches autocomplete.session.shown, autocomplete.session.hidden
//	autocomplete.**          matches every autocomplete topic
//	**                       matches everything
package topic
