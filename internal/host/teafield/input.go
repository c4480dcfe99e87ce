package teafield

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/mentions/internal/autocomplete/surface"
	"github.com/dshills/mentions/internal/renderer/core"
)

// Input adapts a bubbles text input to the engine's TextSurface. The
// pointer is the field's identity, so one Input must live for as long as
// the field does.
type Input struct {
	ti textinput.Model
}

// NewInput creates a focused input.
func NewInput(prompt string) *Input {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Focus()
	return &Input{ti: ti}
}

func (in *Input) Value() string { return in.ti.Value() }
func (in *Input) Caret() int    { return in.ti.Position() }

func (in *Input) SetValue(text string) { in.ti.SetValue(text) }

// SetSelection moves the cursor to end. Text inputs have no selection.
func (in *Input) SetSelection(_, end int) { in.ti.SetCursor(end) }

// View renders the input line.
func (in *Input) View() string { return in.ti.View() }

// Anchor returns the caret column, counting the prompt.
func (in *Input) Anchor(caret int) surface.Anchor {
	runes := []rune(in.ti.Value())
	caret = min(max(caret, 0), len(runes))
	return surface.Anchor{
		Left:   lipgloss.Width(in.ti.Prompt) + core.StringWidth(string(runes[:caret])),
		Height: 1,
	}
}

// Locator positions dropdowns for Inputs.
var Locator = surface.LocatorFunc(func(s surface.TextSurface, caret int) surface.Anchor {
	if in, ok := s.(*Input); ok {
		return in.Anchor(caret)
	}
	return surface.Anchor{}
})
