// Package match filters a value set against a query.
package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
)

// Filter returns the values that contain query, compared case-insensitively,
// in the value set's iteration order. An empty query matches every value.
func Filter(values *trigger.ValueSet, query string) []string {
	if values.Len() == 0 {
		return nil
	}

	// cases.Caser is stateful and not safe for reuse across goroutines.
	lower := cases.Lower(language.Und)
	needle := lower.String(query)

	var matches []string
	values.Each(func(v string) bool {
		if needle == "" || strings.Contains(lower.String(v), needle) {
			matches = append(matches, v)
		}
		return true
	})
	return matches
}
