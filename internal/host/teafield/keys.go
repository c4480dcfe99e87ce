package teafield

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/mentions/internal/input/key"
)

// convertKeyMsg maps a bubbletea key to a key.Event. Multi-rune messages
// (pastes and input method commits) are not single keys and report false.
func convertKeyMsg(msg tea.KeyMsg) (key.Event, bool) {
	mods := key.ModNone
	if msg.Alt {
		mods = mods.With(key.ModAlt)
	}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) != 1 || msg.Paste {
			return key.Event{}, false
		}
		return key.NewRuneEvent(msg.Runes[0], mods), true
	case tea.KeyShiftTab:
		return key.NewSpecialEvent(key.KeyTab, mods.With(key.ModShift)), true
	}

	if k, ok := teaCtrlKeys[msg.Type]; ok {
		return key.NewSpecialEvent(k, mods.With(key.ModCtrl)), true
	}
	k, ok := teaKeys[msg.Type]
	if !ok {
		return key.Event{}, false
	}
	return key.NewSpecialEvent(k, mods), true
}

var teaKeys = map[tea.KeyType]key.Key{
	tea.KeySpace:     key.KeySpace,
	tea.KeyTab:       key.KeyTab,
	tea.KeyEnter:     key.KeyEnter,
	tea.KeyBackspace: key.KeyBackspace,
	tea.KeyDelete:    key.KeyDelete,
	tea.KeyLeft:      key.KeyLeft,
	tea.KeyRight:     key.KeyRight,
	tea.KeyHome:      key.KeyHome,
	tea.KeyEnd:       key.KeyEnd,
	tea.KeyUp:        key.KeyUp,
	tea.KeyDown:      key.KeyDown,
	tea.KeyEsc:       key.KeyEscape,
}

// teaCtrlKeys are the text input's emacs-style bindings, reported as the
// key whose edit they perform. Word and line deletions count as Backspace
// or Delete so the whitespace rule sees them.
var teaCtrlKeys = map[tea.KeyType]key.Key{
	tea.KeyCtrlH: key.KeyBackspace,
	tea.KeyCtrlW: key.KeyBackspace,
	tea.KeyCtrlU: key.KeyBackspace,
	tea.KeyCtrlD: key.KeyDelete,
	tea.KeyCtrlK: key.KeyDelete,
	tea.KeyCtrlA: key.KeyHome,
	tea.KeyCtrlE: key.KeyEnd,
	tea.KeyCtrlB: key.KeyLeft,
	tea.KeyCtrlF: key.KeyRight,
}
