package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		hex     string
		want    Color
		wantErr bool
	}{
		{"#FF8040", ColorFromRGB(255, 128, 64), false},
		{"ff8040", ColorFromRGB(255, 128, 64), false},
		{"#FFF", ColorFromRGB(255, 255, 255), false},
		{"#GGG", Color{}, true},
		{"#12345", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := ColorFromHex(tt.hex)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "default", ColorDefault.String())
	assert.Equal(t, "#0a0b0c", ColorFromRGB(10, 11, 12).String())
	assert.Equal(t, "index(42)", ColorFromIndex(42).String())
}

func TestStyleBuilders(t *testing.T) {
	s := DefaultStyle().Bold().Reverse().WithForeground(ColorFromIndex(3))
	assert.True(t, s.Attributes.Has(AttrBold))
	assert.True(t, s.Attributes.Has(AttrReverse))
	assert.False(t, s.Attributes.Has(AttrDim))
	assert.Equal(t, ColorFromIndex(3), s.Foreground)
	assert.True(t, s.Background.IsDefault())
}

func TestCellsFromString(t *testing.T) {
	cells := CellsFromString("a世b", DefaultStyle())
	require.Len(t, cells, 4)
	assert.Equal(t, 2, cells[1].Width)
	assert.True(t, cells[2].IsContinuation())
	assert.Equal(t, "a世b", StringFromCells(cells))

	assert.Equal(t, 4, StringWidth("a世b"))
	assert.Equal(t, "ab…", Truncate("abcdef", 3, "…"))
}

func TestScreenRect(t *testing.T) {
	r := RectFromSize(1, 2, 3, 4)
	assert.Equal(t, 4, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.True(t, r.Contains(2, 1))
	assert.False(t, r.Contains(6, 1))

	assert.Equal(t, RectFromSize(2, 3, 2, 3), r.Intersection(RectFromSize(2, 3, 10, 10)))
	assert.True(t, r.Intersection(RectFromSize(20, 20, 1, 1)).IsEmpty())
	assert.True(t, ScreenRect{Top: 1, Left: 1}.IsEmpty())
}
