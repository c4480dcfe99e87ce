package values

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize prepares raw candidates for a trigger: it trims surrounding
// space, strips one leading prefix character, lowercases, and drops empty
// strings and duplicates. First occurrences keep their order.
func Normalize(prefix rune, raw []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))

	for _, v := range raw {
		v = strings.TrimSpace(v)
		v = strings.TrimPrefix(v, string(prefix))
		v = lower.String(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
