package autocomplete

import (
	"context"

	"github.com/dshills/mentions/internal/autocomplete/match"
	"github.com/dshills/mentions/internal/autocomplete/scan"
	"github.com/dshills/mentions/internal/autocomplete/session"
	"github.com/dshills/mentions/internal/autocomplete/splice"
	"github.com/dshills/mentions/internal/autocomplete/surface"
	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/event"
	"github.com/dshills/mentions/internal/event/topic"
	"github.com/dshills/mentions/internal/input/key"
	"github.com/dshills/mentions/internal/logging"
)

const eventSource = "autocomplete"

// Engine routes key events to per-field autocomplete sessions.
type Engine struct {
	registry *trigger.Registry
	store    *session.Store
	locator  surface.CaretLocator
	logger   *logging.Logger
	bus      *event.Bus
}

// New creates an engine completing against registry.
func New(registry *trigger.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		store:    session.NewStore(),
		locator:  surface.NoLocator,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("autocomplete")
	return e
}

// Registry returns the current trigger registry.
func (e *Engine) Registry() *trigger.Registry {
	return e.registry
}

// SetRegistry swaps in a new registry, for example after value sources
// reload. Registered fields keep their sessions; the next keystroke scans
// against the new value sets. Targets no longer present are left idle.
func (e *Engine) SetRegistry(r *trigger.Registry) {
	e.registry = r
}

// KeyDown handles a key before the host applies it to target. It returns
// true when the host must suppress the key's default action: Enter and Tab
// while one of the field's sessions is visible.
//
// Targets that are not plain text surfaces are ignored.
func (e *Engine) KeyDown(target any, ev key.Event) (suppress bool) {
	s, ok := surface.Accept(target)
	if !ok {
		return false
	}
	suppress, _ = e.route(target, s, ev)
	return suppress
}

// KeyUp handles a key after the host has applied it, rescanning every
// registered session on target.
func (e *Engine) KeyUp(target any, ev key.Event) {
	s, ok := surface.Accept(target)
	if !ok {
		return
	}
	f, ok := e.store.Lookup(target)
	if !ok {
		return
	}
	e.rescan(f, s, f.Sessions(), ev)
}

// Compose handles an input method composition update whose text is already
// in target. The last composed character is treated like a typed key
// without Shift: it may register a trigger, and every session registered
// before this update is rescanned.
func (e *Engine) Compose(target any, text string) (suppress bool) {
	s, ok := surface.Accept(target)
	if !ok {
		return false
	}
	ev := key.NewCompositionEvent(text)
	suppress, fresh := e.route(target, s, ev)

	f, ok := e.store.Lookup(target)
	if !ok {
		return suppress
	}
	var rest []*session.Session
	for _, sess := range f.Sessions() {
		if !fresh[sess.Target()] {
			rest = append(rest, sess)
		}
	}
	e.rescan(f, s, rest, ev)
	return suppress
}

// Dismiss hides every session on target, e.g. when the field loses focus.
func (e *Engine) Dismiss(target any) {
	f, ok := e.store.Lookup(target)
	if !ok {
		return
	}
	for _, sess := range f.Sessions() {
		e.hide(f, sess)
	}
}

// Forget releases all state for target. A later trigger key registers it
// afresh.
func (e *Engine) Forget(target any) {
	f, ok := e.store.Lookup(target)
	if !ok {
		return
	}
	e.logger.WithField("field", f.ID()).Debug("forget field")
	e.store.Forget(target)
}

// Snapshot returns the session state for the named target on a field.
func (e *Engine) Snapshot(target any, name string) (session.Snapshot, bool) {
	f, ok := e.store.Lookup(target)
	if !ok {
		return session.Snapshot{}, false
	}
	sess, ok := f.Session(name)
	if !ok {
		return session.Snapshot{}, false
	}
	return sess.Snapshot(f.ID()), true
}

// Sessions returns snapshots of every session on a field in registration
// order.
func (e *Engine) Sessions(target any) []session.Snapshot {
	f, ok := e.store.Lookup(target)
	if !ok {
		return nil
	}
	sessions := f.Sessions()
	out := make([]session.Snapshot, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Snapshot(f.ID()))
	}
	return out
}

// Active returns the visible session on a field, if any.
func (e *Engine) Active(target any) (session.Snapshot, bool) {
	f, ok := e.store.Lookup(target)
	if !ok {
		return session.Snapshot{}, false
	}
	sess, ok := f.Visible()
	if !ok {
		return session.Snapshot{}, false
	}
	return sess.Snapshot(f.ID()), true
}

// route is the keydown half: decide suppression, then register any trigger
// whose prefix is ev's character and scan it once immediately. It returns
// the targets registered by this call.
func (e *Engine) route(target any, s surface.TextSurface, ev key.Event) (bool, map[string]bool) {
	suppress := false
	if ev.IsEnter() || ev.IsTab() {
		if f, ok := e.store.Lookup(target); ok {
			_, suppress = f.Visible()
		}
	}

	var fresh map[string]bool
	for _, cfg := range e.registry.Configs() {
		if !ev.IsRuneOf(cfg.Prefix) {
			continue
		}
		f := e.store.Ensure(target)
		sess, created := f.Register(cfg.Target, cfg.Prefix)
		if !created {
			continue
		}
		if fresh == nil {
			fresh = make(map[string]bool)
		}
		fresh[cfg.Target] = true

		e.logger.WithFields(map[string]any{
			"field":  f.ID(),
			"target": cfg.Target,
		}).Debug("register trigger %q", cfg.Prefix)
		publish(e, TopicFieldRegistered, Registered{Field: f.ID(), Target: cfg.Target, Prefix: cfg.Prefix})

		e.rescan(f, s, []*session.Session{sess}, ev)
	}
	return suppress, fresh
}

// candidate is a session that a scan wants to show.
type candidate struct {
	sess    *session.Session
	res     scan.Result
	matches []string
}

// rescan scans sessions for one key, then shows the candidate whose prefix
// is nearest the caret. Every session is scanned before the choice so the
// comparison uses this key's prefix positions. A visible session outside
// sessions was scanned earlier for the same key and competes as it stands.
func (e *Engine) rescan(f *session.Field, s surface.TextSurface, sessions []*session.Session, ev key.Event) {
	scanned := make(map[*session.Session]bool, len(sessions))
	var win *candidate
	for _, sess := range sessions {
		scanned[sess] = true
		c, ok := e.scan(f, s, sess, ev)
		if ok && (win == nil || c.res.PrefixIndex > win.res.PrefixIndex) {
			win = &c
		}
	}
	if win == nil {
		return
	}

	for _, other := range f.Sessions() {
		if !scanned[other] && other.Visible() && other.PrefixIndex() > win.res.PrefixIndex {
			e.hide(f, win.sess)
			return
		}
	}
	e.show(f, s, win)
}

// scan runs the caret scanner, match engine and navigation for one session.
// Keys that would show the session report it as a candidate instead.
func (e *Engine) scan(f *session.Field, s surface.TextSurface, sess *session.Session, ev key.Event) (candidate, bool) {
	cfg, ok := e.registry.ByTarget(sess.Target())
	if !ok {
		e.hide(f, sess)
		return candidate{}, false
	}

	res := scan.Scan(s.Value(), s.Caret(), cfg.Prefix)
	if !res.Found() {
		e.hide(f, sess)
		return candidate{}, false
	}

	if res.HasWhitespace {
		if ev.IsSpace() || ev.IsDeletion() {
			e.hide(f, sess)
		}
		return candidate{}, false
	}

	matches := match.Filter(cfg.Values, res.Query)
	if len(matches) == 0 {
		e.hide(f, sess)
		return candidate{}, false
	}

	switch {
	case ev.IsEnter():
		if sess.Visible() {
			e.commit(f, s, sess, res.PrefixIndex)
		}
	case ev.IsTab():
		if !sess.Visible() {
			return candidate{}, false
		}
		if ev.HasShift() {
			sess.Prev()
		} else {
			sess.Next()
		}
		publish(e, TopicSessionUpdated, Changed{Session: sess.Snapshot(f.ID())})
	default:
		return candidate{sess: sess, res: res, matches: matches}, true
	}
	return candidate{}, false
}

// show makes c's session visible with fresh matches and hides the rest of
// the field's sessions. A field shows one session at a time.
func (e *Engine) show(f *session.Field, s surface.TextSurface, c *candidate) {
	sess := c.sess
	for _, other := range f.Sessions() {
		if other != sess {
			e.hide(f, other)
		}
	}

	wasVisible := sess.Visible()
	sess.Show(c.res.PrefixIndex, c.res.Query, c.matches, e.locator.Locate(s, s.Caret()))

	t := TopicSessionUpdated
	if !wasVisible {
		t = TopicSessionShown
	}
	publish(e, t, Changed{Session: sess.Snapshot(f.ID())})
}

func (e *Engine) hide(f *session.Field, sess *session.Session) {
	wasVisible := sess.Visible()
	sess.Hide()
	if wasVisible {
		publish(e, TopicSessionHidden, Changed{Session: sess.Snapshot(f.ID())})
	}
}

func (e *Engine) commit(f *session.Field, s surface.TextSurface, sess *session.Session, prefixIndex int) {
	log := e.logger.WithFields(map[string]any{
		"field":  f.ID(),
		"target": sess.Target(),
	})
	before := sess.Snapshot(f.ID())

	m, ok := sess.Current()
	if !ok {
		log.WithField("index", sess.Highlighted()).Warn("highlight index has no match")
		publish(e, TopicDesync, Desync{Session: before, Index: sess.Highlighted()})
		return
	}

	res, err := splice.Commit(s, prefixIndex, sess.Prefix(), m)
	if err != nil {
		log.Warn("commit aborted: %v", err)
		publish(e, TopicDesync, Desync{Session: before, Index: sess.Highlighted()})
		return
	}

	log.Debug("commit %q", m)
	sess.Hide()
	publish(e, TopicSessionCommitted, Committed{
		Session: before,
		Match:   m,
		Text:    res.Text,
		Caret:   res.Caret,
	})
	publish(e, TopicSessionHidden, Changed{Session: sess.Snapshot(f.ID())})
}

func publish[T any](e *Engine, t topic.Topic, payload T) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(context.Background(), event.NewEvent(t, payload, eventSource)); err != nil {
		e.logger.Warn("publish %s: %v", t, err)
	}
}
