// Package teafield hosts the autocomplete engine in a bubbletea program.
//
// Key messages are routed through the engine around the text input's own
// Update: KeyDown first, then the input applies the key unless the engine
// suppressed it, then KeyUp. Pasted text goes through Engine.Compose.
package teafield

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/mentions/internal/autocomplete"
	"github.com/dshills/mentions/internal/autocomplete/session"
	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/input/key"
	"github.com/dshills/mentions/internal/logging"
	"github.com/dshills/mentions/internal/renderer/dropdown"
)

// ReloadMsg replaces the engine's registry, e.g. after source files change.
// Send it with tea.Program.Send.
type ReloadMsg struct {
	Registry *trigger.Registry
}

// SubmitMsg is emitted when Enter is pressed with no dropdown open.
type SubmitMsg struct {
	Text string
}

// Styles controls how the dropdown and status line look.
type Styles struct {
	Item      lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
	Status    lipgloss.Style
}

// DefaultStyles highlights with the given background color.
func DefaultStyles(highlight lipgloss.Color) Styles {
	return Styles{
		Item:      lipgloss.NewStyle().Padding(0, 1),
		Highlight: lipgloss.NewStyle().Padding(0, 1).Background(highlight).Bold(true),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
		Status:    lipgloss.NewStyle().Faint(true),
	}
}

// Model is a bubbletea model for one autocompleting input.
type Model struct {
	input    *Input
	engine   *autocomplete.Engine
	styles   Styles
	maxItems int

	submitted []string
	status    string
	quitting  bool
}

// Option configures a Model.
type Option func(*Model)

// WithStyles sets the dropdown styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithMaxItems sets how many matches are listed at once.
func WithMaxItems(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.maxItems = n
		}
	}
}

// New creates a model completing against reg.
func New(reg *trigger.Registry, logger *logging.Logger, opts ...Option) Model {
	m := Model{
		input:    NewInput("> "),
		styles:   DefaultStyles(lipgloss.Color("62")),
		maxItems: dropdown.DefaultMaxItems,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.engine = autocomplete.New(reg,
		autocomplete.WithLogger(logger),
		autocomplete.WithLocator(Locator),
	)
	return m
}

// Engine returns the engine driving the input.
func (m Model) Engine() *autocomplete.Engine { return m.engine }

// Input returns the text input.
func (m Model) Input() *Input { return m.input }

// Submitted returns the lines entered so far.
func (m Model) Submitted() []string { return m.submitted }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.input.ti.Width = max(msg.Width-lipgloss.Width(m.input.ti.Prompt)-1, 1)
		return m, nil

	case ReloadMsg:
		m.engine.SetRegistry(msg.Registry)
		m.status = fmt.Sprintf("values reloaded (%d triggers)", msg.Registry.Len())
		return m, nil
	}

	return m, m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		if _, open := m.engine.Active(m.input); open {
			m.engine.Dismiss(m.input)
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	ev, ok := convertKeyMsg(msg)
	if !ok {
		if msg.Type == tea.KeyRunes {
			var cmd tea.Cmd
			m.input.ti, cmd = m.input.ti.Update(msg)
			m.engine.Compose(m.input, string(msg.Runes))
			return m, cmd
		}
		return m, m.updateInput(msg)
	}

	before, wasOpen := m.engine.Active(m.input)

	var cmd tea.Cmd
	if !m.engine.KeyDown(m.input, ev) {
		if ev.IsEnter() {
			cmd = m.submit()
		} else if !ev.IsTab() {
			m.input.ti, cmd = m.input.ti.Update(msg)
		}
	}
	m.engine.KeyUp(m.input, ev)

	if _, open := m.engine.Active(m.input); ev.IsEnter() && wasOpen && !open {
		if match, ok := before.HighlightedMatch(); ok {
			m.status = fmt.Sprintf("inserted %c%s", before.Prefix, match)
		}
	}
	return m, cmd
}

// updateInput hands msg to the text input. When the input edits or moves
// on its own, as with clipboard pastes and bindings the engine has no key
// for, the field is rescanned so the dropdown follows the text.
func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	value, caret := m.input.Value(), m.input.Caret()

	var cmd tea.Cmd
	m.input.ti, cmd = m.input.ti.Update(msg)
	if m.input.Value() != value || m.input.Caret() != caret {
		m.engine.KeyUp(m.input, key.NewSpecialEvent(key.KeyUnidentified, key.ModNone))
	}
	return cmd
}

func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.submitted = append(m.submitted, text)
	m.input.ti.Reset()
	m.status = ""
	return func() tea.Msg { return SubmitMsg{Text: text} }
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if snap, open := m.engine.Active(m.input); open {
		b.WriteString(m.dropdownView(snap))
		b.WriteString("\n")
	}

	status := m.status
	if status == "" {
		status = "tab/shift+tab cycle • enter insert • esc close • ctrl+c quit"
	}
	b.WriteString(m.styles.Status.Render(status))
	return b.String()
}

func (m Model) dropdownView(snap session.Snapshot) string {
	first, count := dropdown.Window(len(snap.Matches), snap.Highlighted, m.maxItems)

	lines := make([]string, 0, count+1)
	for i := first; i < first+count; i++ {
		style := m.styles.Item
		if i == snap.Highlighted {
			style = m.styles.Highlight
		}
		lines = append(lines, style.Render(string(snap.Prefix)+snap.Matches[i]))
	}
	if len(snap.Matches) > count {
		lines = append(lines, m.styles.Status.Render(fmt.Sprintf(" %d/%d", first+count, len(snap.Matches))))
	}

	box := m.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.NewStyle().MarginLeft(snap.Anchor.Left).Render(box)
}
