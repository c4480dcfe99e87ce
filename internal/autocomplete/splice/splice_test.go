package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mentions/internal/autocomplete/surface"
)

func TestSplice(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		caret       int
		prefixIndex int
		prefix      rune
		match       string
		want        Result
	}{
		{
			name: "extends partial query", text: "Hey @bo", caret: 7, prefixIndex: 4, prefix: '@', match: "bob",
			want: Result{Text: "Hey @bob", Caret: 8},
		},
		{
			name: "replaces rather than extends", text: "~xyz", caret: 4, prefixIndex: 0, prefix: '~', match: "comp",
			want: Result{Text: "~comp", Caret: 5},
		},
		{
			name: "keeps text after caret", text: "a ~co rest", caret: 5, prefixIndex: 2, prefix: '~', match: "comp",
			want: Result{Text: "a ~comp rest", Caret: 7},
		},
		{
			name: "bare prefix", text: "@", caret: 1, prefixIndex: 0, prefix: '@', match: "alice",
			want: Result{Text: "@alice", Caret: 6},
		},
		{
			name: "rune offsets", text: "é ~gr", caret: 5, prefixIndex: 2, prefix: '~', match: "grüne",
			want: Result{Text: "é ~grüne", Caret: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Splice(tt.text, tt.caret, tt.prefixIndex, tt.prefix, tt.match)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpliceErrors(t *testing.T) {
	_, err := Splice("@bo", 9, 0, '@', "bob")
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Splice("@bo", 3, 1, '@', "bob")
	assert.ErrorIs(t, err, ErrOutOfRange, "index must point at the prefix")

	_, err = Splice("@bo", 0, 0, '@', "bob")
	assert.ErrorIs(t, err, ErrOutOfRange, "prefix must precede the caret")

	_, err = Splice("@bo", 3, -1, '@', "bob")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCommit(t *testing.T) {
	b := surface.NewBuffer("Hey @bo")
	res, err := Commit(b, 4, '@', "bob")
	require.NoError(t, err)

	assert.Equal(t, "Hey @bob", b.Value())
	assert.Equal(t, len("Hey @bob"), res.Caret)
	start, end := b.Selection()
	assert.Equal(t, res.Caret, start)
	assert.Equal(t, res.Caret, end, "selection collapses to the caret")
}

func TestCommitCollapsesSelection(t *testing.T) {
	b := surface.NewBuffer("~co and more")
	b.SetSelection(3, 7)
	_, err := Commit(b, 0, '~', "comp")
	require.NoError(t, err)

	assert.Equal(t, "~comp and more", b.Value())
	start, end := b.Selection()
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestCommitLeavesSurfaceOnError(t *testing.T) {
	b := surface.NewBuffer("plain")
	_, err := Commit(b, 0, '@', "bob")
	assert.Error(t, err)
	assert.Equal(t, "plain", b.Value())
}
