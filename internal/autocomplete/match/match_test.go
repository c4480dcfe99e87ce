package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		query  string
		want   []string
	}{
		{"case insensitive", []string{"alice", "bob"}, "ALI", []string{"alice"}},
		{"empty query shows all", []string{"x", "y", "z"}, "", []string{"x", "y", "z"}},
		{"substring not prefix", []string{"comp", "music", "compsci"}, "mp", []string{"comp", "compsci"}},
		{"keeps value order", []string{"zed", "adz", "mzz"}, "z", []string{"zed", "adz", "mzz"}},
		{"no match", []string{"alice"}, "q", nil},
		{"unicode folding", []string{"ÉCOLE", "ecole"}, "éco", []string{"ÉCOLE"}},
		{"dotted names", []string{"comp.programming", "comp"}, ".prog", []string{"comp.programming"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(trigger.NewValueSet(tt.values...), tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterEmptySet(t *testing.T) {
	assert.Nil(t, Filter(nil, ""))
	assert.Nil(t, Filter(trigger.NewValueSet(), "a"))
}
