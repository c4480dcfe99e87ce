// Package key provides the key event model shared by every text surface host.
//
// Hosts translate their native input (terminal key presses, bubbletea key
// messages, IME composition updates) into Event values. The autocomplete
// engine consumes only Event, so it never branches on where a character came
// from:
//
//   - Key: identifies a keyboard key (special keys or KeyRune)
//   - Modifier: Shift, Ctrl, Alt, Meta
//   - Source: keyboard press or composition update
//   - Event: one observed key or character
//
// # Key Specifications
//
// Parse accepts the small notation used by the headless CLI:
//
//   - Single characters: "a", "@", "~"
//   - Key names: "Enter", "Tab", "Space", "BS", "Del", "Esc"
//   - Modifiers: "Shift+Tab", "Ctrl+C"
//   - Vim-style: "<S-Tab>", "<CR>", "<BS>"
package key
