// Package scan locates the active trigger occurrence relative to the caret
// and extracts the in-progress query.
package scan

import "unicode"

// Result describes the trigger occurrence nearest the caret.
type Result struct {
	// PrefixInText is false when the prefix does not occur anywhere in the
	// text. The session should hide.
	PrefixInText bool

	// PrefixIndex is the rune offset of the nearest prefix before the
	// caret, or -1 when there is none.
	PrefixIndex int

	// Query is the text between the prefix and the caret.
	Query string

	// HasWhitespace is true when Query contains any whitespace.
	HasWhitespace bool
}

// Found reports whether a prefix occurs before the caret.
func (r Result) Found() bool {
	return r.PrefixInText && r.PrefixIndex >= 0
}

// Active reports whether the result names a usable query: the prefix was
// found before the caret and the query is whitespace-free.
func (r Result) Active() bool {
	return r.Found() && !r.HasWhitespace
}

// Scan finds the last occurrence of prefix strictly before caret in text.
// The caret is a rune offset and is clamped into the text.
func Scan(text string, caret int, prefix rune) Result {
	runes := []rune(text)
	caret = clamp(caret, len(runes))

	res := Result{PrefixIndex: -1}
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] != prefix {
			continue
		}
		res.PrefixInText = true
		if i < caret {
			res.PrefixIndex = i
			break
		}
	}
	if res.PrefixIndex < 0 {
		return res
	}

	query := runes[res.PrefixIndex+1 : caret]
	for _, r := range query {
		if unicode.IsSpace(r) {
			res.HasWhitespace = true
			break
		}
	}
	res.Query = string(query)
	return res
}

func clamp(offset, n int) int {
	if offset < 0 {
		return 0
	}
	if offset > n {
		return n
	}
	return offset
}
