// Package splice replaces an in-progress query with a chosen match and
// repositions the caret.
package splice

import (
	"errors"
	"fmt"

	"github.com/dshills/mentions/internal/autocomplete/surface"
)

// ErrOutOfRange is returned when the prefix index does not fit the text.
var ErrOutOfRange = errors.New("prefix index out of range")

// Result is the outcome of a splice.
type Result struct {
	// Text is the new full text.
	Text string

	// Caret is the rune offset just after the inserted match.
	Caret int
}

// Splice computes text[:prefixIndex+1] + match + text[caret:].
// The query between prefix and caret is discarded, not extended.
// prefixIndex must point at the prefix rune, before the caret.
func Splice(text string, caret, prefixIndex int, prefix rune, match string) (Result, error) {
	runes := []rune(text)
	if caret < 0 || caret > len(runes) {
		return Result{}, fmt.Errorf("%w: caret %d, length %d", ErrOutOfRange, caret, len(runes))
	}
	if prefixIndex < 0 || prefixIndex >= caret || runes[prefixIndex] != prefix {
		return Result{}, fmt.Errorf("%w: prefix %q not at %d", ErrOutOfRange, prefix, prefixIndex)
	}

	head := runes[:prefixIndex+1]
	ins := []rune(match)
	out := make([]rune, 0, len(head)+len(ins)+len(runes)-caret)
	out = append(out, head...)
	out = append(out, ins...)
	out = append(out, runes[caret:]...)

	return Result{
		Text:  string(out),
		Caret: len(head) + len(ins),
	}, nil
}

// Commit splices match into s at its current caret, then collapses the
// selection to the end of the inserted text. It writes to s only on
// success.
func Commit(s surface.TextSurface, prefixIndex int, prefix rune, match string) (Result, error) {
	res, err := Splice(s.Value(), s.Caret(), prefixIndex, prefix, match)
	if err != nil {
		return Result{}, err
	}
	s.SetValue(res.Text)
	s.SetSelection(res.Caret, res.Caret)
	return res, nil
}
