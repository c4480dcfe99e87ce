package autocomplete

import (
	"github.com/dshills/mentions/internal/autocomplete/session"
	"github.com/dshills/mentions/internal/event/topic"
)

// Topics published by the engine.
const (
	TopicFieldRegistered  topic.Topic = "autocomplete.field.registered"
	TopicSessionShown     topic.Topic = "autocomplete.session.shown"
	TopicSessionUpdated   topic.Topic = "autocomplete.session.updated"
	TopicSessionHidden    topic.Topic = "autocomplete.session.hidden"
	TopicSessionCommitted topic.Topic = "autocomplete.session.committed"
	TopicDesync           topic.Topic = "autocomplete.diagnostic.desync"
)

// Registered is published when a target is first registered on a field.
type Registered struct {
	Field  session.FieldID
	Target string
	Prefix rune
}

// Changed is published on show, update and hide transitions.
type Changed struct {
	Session session.Snapshot
}

// Committed is published after a match has been spliced into a field.
type Committed struct {
	// Session is the state just before the commit.
	Session session.Snapshot
	Match   string
	Text    string
	Caret   int
}

// Desync is published when Enter cannot commit the highlighted match.
type Desync struct {
	Session session.Snapshot
	Index   int
}
