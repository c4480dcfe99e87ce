package autocomplete

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mentions/internal/autocomplete/surface"
	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/event"
	"github.com/dshills/mentions/internal/event/topic"
	"github.com/dshills/mentions/internal/input/key"
	"github.com/dshills/mentions/internal/logging"
)

func testRegistry() *trigger.Registry {
	return trigger.MustRegistry(
		trigger.Config{Prefix: '~', Target: trigger.TargetGroups, Values: trigger.NewValueSet("comp", "music", "compsci")},
		trigger.Config{Prefix: '@', Target: trigger.TargetUsernames, Values: trigger.NewValueSet("alice", "bob", "bobby")},
	)
}

// field simulates a host: keydown, apply the edit unless suppressed, keyup.
type field struct {
	t   *testing.T
	eng *Engine
	buf *surface.Buffer
}

func newField(t *testing.T, eng *Engine, text string) *field {
	return &field{t: t, eng: eng, buf: surface.NewBuffer(text)}
}

func (f *field) typ(s string) {
	for _, r := range s {
		ev := key.NewRuneEvent(r, key.ModNone)
		if !f.eng.KeyDown(f.buf, ev) {
			f.buf.InsertRune(r)
		}
		f.eng.KeyUp(f.buf, ev)
	}
}

func (f *field) press(k key.Key, mods key.Modifier) (suppressed bool) {
	ev := key.NewSpecialEvent(k, mods)
	suppressed = f.eng.KeyDown(f.buf, ev)
	if !suppressed {
		f.buf.Apply(ev)
	}
	f.eng.KeyUp(f.buf, ev)
	return suppressed
}

func (f *field) session(target string) sessionView {
	snap, ok := f.eng.Snapshot(f.buf, target)
	require.True(f.t, ok, "session %s not registered", target)
	return sessionView{Visible: snap.Visible, Matches: snap.Matches, Highlighted: snap.Highlighted, Query: snap.Query, PrefixIndex: snap.PrefixIndex}
}

type sessionView struct {
	Visible     bool
	Matches     []string
	Highlighted int
	Query       string
	PrefixIndex int
}

// recorder collects topics published on a bus.
type recorder struct {
	topics []topic.Topic
	events []any
}

func record(t *testing.T, bus *event.Bus) *recorder {
	rec := &recorder{}
	_, err := bus.SubscribeFunc("autocomplete.**", func(_ context.Context, ev any) error {
		rec.topics = append(rec.topics, event.TopicOf(ev))
		rec.events = append(rec.events, ev)
		return nil
	})
	require.NoError(t, err)
	return rec
}

func (r *recorder) count(t topic.Topic) int {
	n := 0
	for _, got := range r.topics {
		if got == t {
			n++
		}
	}
	return n
}

func TestEngine_BarePrefixShowsAll(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~")

	assert.Equal(t, sessionView{
		Visible:     true,
		Matches:     []string{"comp", "music", "compsci"},
		Highlighted: 0,
		Query:       "",
		PrefixIndex: 0,
	}, f.session(trigger.TargetGroups))
}

func TestEngine_FiltersAsYouType(t *testing.T) {
	f := newField(t, New(testRegistry()), "hello ")
	f.typ("~co")

	s := f.session(trigger.TargetGroups)
	assert.True(t, s.Visible)
	assert.Equal(t, []string{"comp", "compsci"}, s.Matches)
	assert.Equal(t, "co", s.Query)
	assert.Equal(t, 6, s.PrefixIndex)

	f.typ("MP")
	s = f.session(trigger.TargetGroups)
	assert.Equal(t, []string{"comp", "compsci"}, s.Matches, "matching ignores case")

	f.typ("x")
	assert.False(t, f.session(trigger.TargetGroups).Visible, "no matches hides")
}

func TestEngine_NearestPrefixIsActive(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~comp ~mu")

	s := f.session(trigger.TargetGroups)
	assert.True(t, s.Visible)
	assert.Equal(t, 6, s.PrefixIndex)
	assert.Equal(t, "mu", s.Query)
	assert.Equal(t, []string{"music"}, s.Matches)
}

func TestEngine_CyclicTab(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~")

	assert.True(t, f.press(key.KeyTab, key.ModNone), "Tab is suppressed while the list is open")
	f.press(key.KeyTab, key.ModNone)
	assert.Equal(t, 2, f.session(trigger.TargetGroups).Highlighted)

	f.press(key.KeyTab, key.ModNone)
	assert.Equal(t, 0, f.session(trigger.TargetGroups).Highlighted, "Tab past the last match wraps")

	assert.True(t, f.press(key.KeyTab, key.ModShift))
	assert.Equal(t, 2, f.session(trigger.TargetGroups).Highlighted, "Shift+Tab before the first match wraps")

	assert.Equal(t, "~", f.buf.Value(), "navigation never edits the text")
}

func TestEngine_HighlightKeptAcrossTyping(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~")
	f.press(key.KeyTab, key.ModNone)
	f.press(key.KeyTab, key.ModNone)

	f.typ("c")
	s := f.session(trigger.TargetGroups)
	assert.Equal(t, []string{"comp", "compsci"}, s.Matches)
	assert.Equal(t, 0, s.Highlighted, "out of range highlight wraps into the new set")
}

func TestEngine_CommitSplice(t *testing.T) {
	f := newField(t, New(testRegistry()), "Hey ")
	f.typ("@bo")
	require.Equal(t, []string{"bob", "bobby"}, f.session(trigger.TargetUsernames).Matches)

	assert.True(t, f.press(key.KeyEnter, key.ModNone), "Enter is suppressed while the list is open")
	assert.Equal(t, "Hey @bob", f.buf.Value())
	start, end := f.buf.Selection()
	assert.Equal(t, len("Hey @bob"), start)
	assert.Equal(t, start, end)

	s := f.session(trigger.TargetUsernames)
	assert.False(t, s.Visible)
	assert.Equal(t, 0, s.Highlighted)
	assert.Equal(t, -1, s.PrefixIndex)
}

func TestEngine_CommitHighlighted(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("@b")
	f.press(key.KeyTab, key.ModNone)
	f.press(key.KeyEnter, key.ModNone)
	assert.Equal(t, "@bobby", f.buf.Value())
}

func TestEngine_CommitKeepsTrailingText(t *testing.T) {
	f := newField(t, New(testRegistry()), "Hey  there")
	f.buf.SetCaret(4)
	f.typ("@bo")
	require.Equal(t, "Hey @bo there", f.buf.Value())

	f.press(key.KeyEnter, key.ModNone)
	assert.Equal(t, "Hey @bob there", f.buf.Value())
	assert.Equal(t, 8, f.buf.Caret())
}

func TestEngine_CommitDoesNotRetrigger(t *testing.T) {
	bus := event.NewBus()
	rec := record(t, bus)
	f := newField(t, New(testRegistry(), WithBus(bus)), "")
	f.typ("@al")
	f.press(key.KeyEnter, key.ModNone)

	assert.Equal(t, "@alice", f.buf.Value())
	assert.Equal(t, 1, rec.count(TopicSessionCommitted))
	assert.False(t, f.session(trigger.TargetUsernames).Visible)

	f.press(key.KeyEnter, key.ModNone)
	assert.Equal(t, "@alice", f.buf.Value(), "Enter on a hidden session does nothing")
	assert.Equal(t, 1, rec.count(TopicSessionCommitted))
}

func TestEngine_WhitespaceAbandonment(t *testing.T) {
	f := newField(t, New(testRegistry()), " says hi")
	f.buf.SetCaret(0)
	f.typ("@alice")
	require.Equal(t, "@alice says hi", f.buf.Value())
	require.True(t, f.session(trigger.TargetUsernames).Visible)

	f.typ(" ")
	assert.False(t, f.session(trigger.TargetUsernames).Visible, "space in the query hides")

	f.typ("hi")
	assert.False(t, f.session(trigger.TargetUsernames).Visible, "typing past the mention does not reopen")
	assert.Equal(t, "@alice hi says hi", f.buf.Value())
}

func TestEngine_WhitespaceOtherKeyLeavesState(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("@al")
	f.buf.Insert(" ")
	require.True(t, f.session(trigger.TargetUsernames).Visible)

	f.typ("x")
	s := f.session(trigger.TargetUsernames)
	assert.True(t, s.Visible, "non-space keys leave the session unchanged")
	assert.Equal(t, "al", s.Query)
}

func TestEngine_DeleteBackIntoQuery(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("@al ")
	require.False(t, f.session(trigger.TargetUsernames).Visible)

	f.press(key.KeyBackspace, key.ModNone)
	s := f.session(trigger.TargetUsernames)
	assert.True(t, s.Visible, "deleting the space reopens the list")
	assert.Equal(t, []string{"alice"}, s.Matches)
}

func TestEngine_PrefixDeleted(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~")
	f.press(key.KeyBackspace, key.ModNone)
	assert.False(t, f.session(trigger.TargetGroups).Visible)
	assert.Empty(t, f.buf.Value())
}

func TestEngine_PrefixAfterCaret(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~co")
	f.press(key.KeyHome, key.ModNone)
	assert.False(t, f.session(trigger.TargetGroups).Visible)

	f.press(key.KeyEnd, key.ModNone)
	assert.True(t, f.session(trigger.TargetGroups).Visible, "moving back after the query reopens")
}

func TestEngine_IdempotentRegistration(t *testing.T) {
	bus := event.NewBus()
	rec := record(t, bus)
	f := newField(t, New(testRegistry(), WithBus(bus)), "")

	f.typ("@")
	f.typ("a")
	f.typ("@")

	assert.Equal(t, 1, rec.count(TopicFieldRegistered))
	assert.Equal(t, 1, rec.count(TopicSessionShown))
	assert.Equal(t, 2, rec.count(TopicSessionUpdated), "one scan per keystroke")
	assert.Len(t, f.eng.Sessions(f.buf), 1)
}

func TestEngine_SessionsPerField(t *testing.T) {
	eng := New(testRegistry())
	a := newField(t, eng, "")
	b := newField(t, eng, "")

	a.typ("~")
	_, ok := eng.Snapshot(b.buf, trigger.TargetGroups)
	assert.False(t, ok, "registration is per field")

	b.typ("~mu")
	assert.Equal(t, []string{"comp", "music", "compsci"}, a.session(trigger.TargetGroups).Matches)
	assert.Equal(t, []string{"music"}, b.session(trigger.TargetGroups).Matches)

	sa, _ := eng.Snapshot(a.buf, trigger.TargetGroups)
	sb, _ := eng.Snapshot(b.buf, trigger.TargetGroups)
	assert.NotEqual(t, sa.Field, sb.Field)
}

func TestEngine_TwoTargetsIndependent(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~co")
	f.press(key.KeyTab, key.ModNone)
	require.Equal(t, 1, f.session(trigger.TargetGroups).Highlighted)

	f.typ(" @b")
	groups := f.session(trigger.TargetGroups)
	users := f.session(trigger.TargetUsernames)
	assert.False(t, groups.Visible)
	assert.True(t, users.Visible)
	assert.Equal(t, 0, users.Highlighted, "highlight is per session")

	f.press(key.KeyTab, key.ModNone)
	assert.Equal(t, 1, f.session(trigger.TargetUsernames).Highlighted)
	assert.Equal(t, 0, f.session(trigger.TargetGroups).Highlighted)

	active, ok := f.eng.Active(f.buf)
	require.True(t, ok)
	assert.Equal(t, trigger.TargetUsernames, active.Target)
}

func TestEngine_OneVisiblePerField(t *testing.T) {
	reg := trigger.MustRegistry(
		trigger.Config{Prefix: '@', Target: "users", Values: trigger.NewValueSet("bob#go")},
		trigger.Config{Prefix: '#', Target: "tags", Values: trigger.NewValueSet("go")},
	)
	f := newField(t, New(reg), "")

	f.typ("@bob")
	require.True(t, f.session("users").Visible)

	f.typ("#")
	assert.True(t, f.session("tags").Visible, "nearest prefix wins")
	assert.False(t, f.session("users").Visible)

	f.typ("g")
	assert.True(t, f.session("tags").Visible)
	assert.False(t, f.session("users").Visible)

	active, ok := f.eng.Active(f.buf)
	require.True(t, ok)
	assert.Equal(t, "tags", active.Target)
}

func TestEngine_NearestPrefixUsesCurrentScan(t *testing.T) {
	f := newField(t, New(testRegistry()), "")
	f.typ("~co@b")
	require.True(t, f.session(trigger.TargetUsernames).Visible)

	// The caret moves back before '@': the users session loses its prefix
	// on this key, so groups must not lose to its old position.
	f.press(key.KeyLeft, key.ModNone)
	f.press(key.KeyLeft, key.ModNone)
	require.Equal(t, 3, f.buf.Caret())

	assert.Equal(t, sessionView{
		Visible:     true,
		Matches:     []string{"comp", "compsci"},
		Highlighted: 0,
		Query:       "co",
		PrefixIndex: 0,
	}, f.session(trigger.TargetGroups))
	assert.False(t, f.session(trigger.TargetUsernames).Visible)

	active, ok := f.eng.Active(f.buf)
	require.True(t, ok)
	assert.Equal(t, trigger.TargetGroups, active.Target)
}

func TestEngine_EmptyValueSet(t *testing.T) {
	reg := trigger.MustRegistry(trigger.Config{Prefix: '@', Target: trigger.TargetUsernames})
	f := newField(t, New(reg), "")
	f.typ("@a")

	assert.False(t, f.session(trigger.TargetUsernames).Visible)
	assert.False(t, f.press(key.KeyTab, key.ModNone), "Tab is not suppressed while hidden")
	assert.False(t, f.press(key.KeyEnter, key.ModNone))
}

type richField struct {
	*surface.Buffer
}

func (richField) PlainText() bool { return false }

func TestEngine_IgnoresUnsupportedTargets(t *testing.T) {
	eng := New(testRegistry())
	ev := key.NewRuneEvent('~', key.ModNone)

	assert.False(t, eng.KeyDown(42, ev))
	eng.KeyUp(42, ev)
	assert.Nil(t, eng.Sessions(42))

	rich := richField{surface.NewBuffer("~")}
	assert.False(t, eng.KeyDown(rich, ev))
	eng.KeyUp(rich, ev)
	assert.Nil(t, eng.Sessions(rich))
	assert.False(t, eng.Compose(rich, "~"))
}

func TestEngine_Compose(t *testing.T) {
	eng := New(testRegistry())
	buf := surface.NewBuffer("")

	buf.Insert("~")
	eng.Compose(buf, "~")
	snap, ok := eng.Snapshot(buf, trigger.TargetGroups)
	require.True(t, ok)
	assert.True(t, snap.Visible)
	assert.Len(t, snap.Matches, 3)

	buf.Insert("mu")
	eng.Compose(buf, "mu")
	snap, _ = eng.Snapshot(buf, trigger.TargetGroups)
	assert.Equal(t, []string{"music"}, snap.Matches)

	buf.Insert(" ")
	eng.Compose(buf, " ")
	snap, _ = eng.Snapshot(buf, trigger.TargetGroups)
	assert.False(t, snap.Visible, "composed space abandons the session")
}

func TestEngine_DismissAndForget(t *testing.T) {
	bus := event.NewBus()
	rec := record(t, bus)
	eng := New(testRegistry(), WithBus(bus))
	f := newField(t, eng, "")
	f.typ("~")

	first, _ := eng.Snapshot(f.buf, trigger.TargetGroups)
	eng.Dismiss(f.buf)
	assert.False(t, f.session(trigger.TargetGroups).Visible)
	assert.Equal(t, 1, rec.count(TopicSessionHidden))

	eng.Dismiss(f.buf)
	assert.Equal(t, 1, rec.count(TopicSessionHidden), "hiding a hidden session is silent")

	eng.Forget(f.buf)
	_, ok := eng.Snapshot(f.buf, trigger.TargetGroups)
	assert.False(t, ok)

	f.typ("~")
	second, ok := eng.Snapshot(f.buf, trigger.TargetGroups)
	require.True(t, ok)
	assert.NotEqual(t, first.Field, second.Field)
	assert.Equal(t, 2, rec.count(TopicFieldRegistered))
}

func TestEngine_SetRegistry(t *testing.T) {
	eng := New(testRegistry())
	f := newField(t, eng, "")
	f.typ("~m")
	require.Equal(t, []string{"comp", "music", "compsci"}, f.session(trigger.TargetGroups).Matches)

	eng.SetRegistry(trigger.MustRegistry(
		trigger.Config{Prefix: '~', Target: trigger.TargetGroups, Values: trigger.NewValueSet("math", "movies")},
	))
	f.typ("o")
	assert.Equal(t, []string{"movies"}, f.session(trigger.TargetGroups).Matches)
	assert.Same(t, eng.Registry(), eng.registry)

	eng.SetRegistry(trigger.MustRegistry())
	f.typ("v")
	assert.False(t, f.session(trigger.TargetGroups).Visible, "removed targets go idle")
}

func TestEngine_AnchorFromLocator(t *testing.T) {
	loc := surface.LocatorFunc(func(_ surface.TextSurface, caret int) surface.Anchor {
		return surface.Anchor{Left: caret, Top: 1, Height: 1}
	})
	eng := New(testRegistry(), WithLocator(loc))
	f := newField(t, eng, "ab ")
	f.typ("~c")

	snap, _ := eng.Snapshot(f.buf, trigger.TargetGroups)
	assert.Equal(t, surface.Anchor{Left: 5, Top: 1, Height: 1}, snap.Anchor)
}

func TestEngine_EnterWhileHidden(t *testing.T) {
	bus := event.NewBus()
	rec := record(t, bus)
	eng := New(testRegistry(), WithBus(bus))

	f := newField(t, eng, "")
	f.typ("~comp ")
	require.False(t, f.session(trigger.TargetGroups).Visible)
	assert.False(t, f.press(key.KeyEnter, key.ModNone), "enter reaches the host")
	assert.Equal(t, "~comp ", f.buf.Value())

	g := newField(t, eng, "")
	g.typ("~mu")
	eng.Dismiss(g.buf)
	assert.False(t, g.press(key.KeyEnter, key.ModNone))
	assert.Equal(t, "~mu", g.buf.Value(), "dismissed session does not commit")
	assert.Equal(t, 3, g.buf.Caret())
	assert.False(t, g.session(trigger.TargetGroups).Visible, "enter does not reopen")

	assert.Zero(t, rec.count(TopicSessionCommitted))
	assert.Zero(t, rec.count(TopicDesync))
}

func TestEngine_MultilineEnterWhileHidden(t *testing.T) {
	eng := New(testRegistry())
	f := &field{t: t, eng: eng, buf: surface.NewMultilineBuffer("")}
	f.typ("~comp")
	f.typ(" ")
	f.press(key.KeyEnter, key.ModNone)
	f.typ("next")
	assert.Equal(t, "~comp \nnext", f.buf.Value())
	assert.False(t, f.session(trigger.TargetGroups).Visible)
}

func TestEngine_CommittedPayload(t *testing.T) {
	bus := event.NewBus()
	rec := record(t, bus)
	f := newField(t, New(testRegistry(), WithBus(bus)), "")
	f.typ("~sci")
	f.press(key.KeyEnter, key.ModNone)

	var got Committed
	for _, ev := range rec.events {
		if p, ok := event.Payload[Committed](ev); ok {
			got = p
		}
	}
	assert.Equal(t, "compsci", got.Match)
	assert.Equal(t, "~compsci", got.Text)
	assert.Equal(t, 8, got.Caret)
	assert.Equal(t, "sci", got.Session.Query)
	assert.Equal(t, trigger.TargetGroups, got.Session.Target)

	// commit publishes committed then hidden
	n := len(rec.topics)
	assert.Equal(t, []topic.Topic{TopicSessionCommitted, TopicSessionHidden}, rec.topics[n-2:])
}

func TestEngine_LogsRegistration(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	f := newField(t, New(testRegistry(), WithLogger(log)), "")
	f.typ("@al")
	f.press(key.KeyEnter, key.ModNone)

	assert.Contains(t, buf.String(), "register trigger '@'")
	assert.Contains(t, buf.String(), "target=usernames")
	assert.Contains(t, buf.String(), `commit "alice"`)
}

// driftingSurface changes its text between the scan and the splice once
// drift is set, which is the only way a commit can lose its prefix.
type driftingSurface struct {
	*surface.Buffer
	drift bool
	reads int
}

func (d *driftingSurface) Value() string {
	v := d.Buffer.Value()
	if !d.drift {
		return v
	}
	d.reads++
	if d.reads > 1 {
		return strings.Replace(v, "@", "#", 1)
	}
	return v
}

func TestEngine_DesyncAbortsCommit(t *testing.T) {
	var logs bytes.Buffer
	bus := event.NewBus()
	rec := record(t, bus)
	eng := New(testRegistry(),
		WithBus(bus),
		WithLogger(logging.New(logging.Config{Level: logging.LevelWarn, Output: &logs})),
	)

	s := &driftingSurface{Buffer: surface.NewBuffer("")}
	for _, r := range "@al" {
		ev := key.NewRuneEvent(r, key.ModNone)
		if !eng.KeyDown(s, ev) {
			s.InsertRune(r)
		}
		eng.KeyUp(s, ev)
	}

	s.drift = true
	enter := key.NewSpecialEvent(key.KeyEnter, key.ModNone)
	require.True(t, eng.KeyDown(s, enter))
	eng.KeyUp(s, enter)

	assert.Equal(t, "@al", s.Buffer.Value(), "text untouched")
	assert.Equal(t, 1, rec.count(TopicDesync))
	assert.Zero(t, rec.count(TopicSessionCommitted))
	assert.Contains(t, logs.String(), "commit aborted")

	snap, ok := eng.Active(s)
	require.True(t, ok, "session stays open")
	assert.Equal(t, []string{"alice"}, snap.Matches)

	for _, ev := range rec.events {
		if p, ok := event.Payload[Desync](ev); ok {
			assert.Equal(t, 0, p.Index)
			assert.Equal(t, trigger.TargetUsernames, p.Session.Target)
		}
	}
}
