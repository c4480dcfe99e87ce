// Package termfield hosts the autocomplete engine in a single-line
// terminal input.
//
// The App owns the event loop: it converts backend key events, forwards
// each one to the engine before and after applying the edit, and repaints
// the field and the dropdown. Value reloads from another goroutine are
// delivered through the backend's interrupt queue so the engine is only
// ever touched by the loop.
package termfield

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/mentions/internal/autocomplete"
	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/event"
	"github.com/dshills/mentions/internal/logging"
	"github.com/dshills/mentions/internal/renderer/backend"
	"github.com/dshills/mentions/internal/renderer/core"
	"github.com/dshills/mentions/internal/renderer/dropdown"
)

const helpLine = "Tab/Shift+Tab cycle  Enter insert  Esc close  Ctrl+C quit"

// quitSignal is posted to stop the loop.
type quitSignal struct{}

// App is a terminal host for one Field.
type App struct {
	backend  backend.Backend
	engine   *autocomplete.Engine
	bus      *event.Bus
	field    *Field
	dropdown *dropdown.Dropdown
	theme    dropdown.Theme
	logger   *logging.Logger

	prompt    string
	onSubmit  func(string)
	submitted []string
	status    string
	quit      bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger shared with the engine.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDropdown sets the dropdown painter.
func WithDropdown(d *dropdown.Dropdown, theme dropdown.Theme) Option {
	return func(a *App) {
		if d != nil {
			a.dropdown = d
			a.theme = theme
		}
	}
}

// WithPrompt sets the text drawn before the field.
func WithPrompt(p string) Option {
	return func(a *App) { a.prompt = p }
}

// WithText sets the field's initial text.
func WithText(s string) Option {
	return func(a *App) { a.field = NewField(s) }
}

// WithSubmit sets the callback for Enter when no dropdown is open.
func WithSubmit(fn func(string)) Option {
	return func(a *App) { a.onSubmit = fn }
}

// New creates an App drawing on b. The backend must already be
// initialized.
func New(b backend.Backend, reg *trigger.Registry, opts ...Option) (*App, error) {
	a := &App{
		backend:  b,
		field:    NewField(""),
		theme:    dropdown.DefaultTheme(),
		logger:   logging.Nop(),
		prompt:   "> ",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.dropdown == nil {
		a.dropdown = dropdown.New(dropdown.Options{Border: true, Theme: a.theme})
	}

	a.bus = event.NewBus(event.WithErrorHandler(func(ev any, err error) {
		a.logger.Warn("handler for %s failed: %v", event.TopicOf(ev), err)
	}))
	if _, err := a.bus.SubscribeFunc(autocomplete.TopicSessionCommitted, a.onCommitted); err != nil {
		return nil, err
	}

	a.engine = autocomplete.New(reg,
		autocomplete.WithLogger(a.logger),
		autocomplete.WithLocator(Locator),
		autocomplete.WithBus(a.bus),
	)

	w, h := b.Size()
	a.layout(w, h)
	return a, nil
}

// Engine returns the engine driving the field.
func (a *App) Engine() *autocomplete.Engine { return a.engine }

// Bus returns the bus session events are published on.
func (a *App) Bus() *event.Bus { return a.bus }

// Field returns the input field.
func (a *App) Field() *Field { return a.field }

// Submitted returns the lines entered so far.
func (a *App) Submitted() []string { return a.submitted }

// Status returns the status line text.
func (a *App) Status() string { return a.status }

// Reload hands a rebuilt registry to the event loop. It is safe to call
// from any goroutine.
func (a *App) Reload(reg *trigger.Registry) {
	if err := a.backend.PostInterrupt(reg); err != nil {
		a.logger.Warn("reload dropped: %v", err)
	}
}

// Run processes events until Ctrl+C, Escape with no open dropdown, or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = a.backend.PostInterrupt(quitSignal{})
	})
	defer stop()

	a.Render()
	for !a.quit {
		a.HandleEvent(a.backend.PollEvent())
		if !a.quit {
			a.Render()
		}
	}
	return ctx.Err()
}

// HandleEvent applies one backend event.
func (a *App) HandleEvent(ev backend.Event) {
	switch ev.Type {
	case backend.EventResize:
		a.layout(ev.Width, ev.Height)
	case backend.EventKey:
		a.handleKey(ev)
	case backend.EventInterrupt:
		a.handleInterrupt(ev.Data)
	}
}

func (a *App) handleKey(ev backend.Event) {
	switch ev.Key {
	case backend.KeyCtrlC:
		a.quit = true
		return
	case backend.KeyEscape:
		if _, open := a.engine.Active(a.field); open {
			a.engine.Dismiss(a.field)
		} else {
			a.quit = true
		}
		return
	}

	kev, ok := convertToKeyEvent(ev)
	if !ok {
		return
	}

	suppress := a.engine.KeyDown(a.field, kev)
	if !suppress && !a.field.Apply(kev) && kev.IsEnter() {
		a.submit()
	}
	a.engine.KeyUp(a.field, kev)
}

func (a *App) handleInterrupt(data any) {
	switch d := data.(type) {
	case quitSignal:
		a.quit = true
	case *trigger.Registry:
		a.engine.SetRegistry(d)
		a.status = fmt.Sprintf("values reloaded (%d triggers)", d.Len())
		a.logger.Info("registry replaced")
	}
}

func (a *App) submit() {
	text := a.field.Value()
	if strings.TrimSpace(text) == "" {
		return
	}
	a.submitted = append(a.submitted, text)
	if a.onSubmit != nil {
		a.onSubmit(text)
	}
	a.field.SetValue("")
	a.field.SetSelection(0, 0)
	a.status = ""
}

func (a *App) onCommitted(_ context.Context, ev any) error {
	c, ok := event.Payload[autocomplete.Committed](ev)
	if !ok {
		return nil
	}
	a.status = fmt.Sprintf("inserted %c%s", c.Session.Prefix, c.Match)
	return nil
}

func (a *App) layout(width, _ int) {
	pw := core.StringWidth(a.prompt)
	a.field.Place(pw, 0, width-pw)
}

// Render repaints the screen.
func (a *App) Render() {
	b := a.backend
	_, h := b.Size()
	b.Clear()

	backend.DrawString(b, 0, 0, a.prompt, core.DefaultStyle().Bold())
	cx := a.field.Draw(b, core.DefaultStyle())

	snap, open := a.engine.Active(a.field)
	if open && a.field.Caret() == a.field.Len() {
		backend.DrawString(b, cx, 0, dropdown.Ghost(snap), a.theme.Ghost)
	}

	status := a.status
	if status == "" {
		status = helpLine
	}
	backend.DrawString(b, 0, h-1, status, core.DefaultStyle().Dim())

	if open {
		a.dropdown.Render(b, snap)
	}

	b.ShowCursor(cx, 0)
	b.Show()
}
