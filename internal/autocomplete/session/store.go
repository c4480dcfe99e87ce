package session

import "github.com/google/uuid"

// FieldID identifies a field for the lifetime of its store entry.
type FieldID string

// Field is the arena entry for one text surface. It carries the per-target
// registration markers and the sessions they own.
type Field struct {
	id     FieldID
	order  []string
	byName map[string]*Session
}

// ID returns the field identifier.
func (f *Field) ID() FieldID { return f.id }

// Registered reports whether target has been registered on this field.
func (f *Field) Registered(target string) bool {
	_, ok := f.byName[target]
	return ok
}

// Register marks target as registered and creates its session. It is
// idempotent: a second call returns the existing session and false.
func (f *Field) Register(target string, prefix rune) (*Session, bool) {
	if s, ok := f.byName[target]; ok {
		return s, false
	}
	s := newSession(target, prefix)
	f.byName[target] = s
	f.order = append(f.order, target)
	return s, true
}

// Session returns the session for target.
func (f *Field) Session(target string) (*Session, bool) {
	s, ok := f.byName[target]
	return s, ok
}

// Sessions returns the field's sessions in registration order.
func (f *Field) Sessions() []*Session {
	out := make([]*Session, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.byName[name])
	}
	return out
}

// Visible returns the visible session, if any.
func (f *Field) Visible() (*Session, bool) {
	for _, name := range f.order {
		if s := f.byName[name]; s.Visible() {
			return s, true
		}
	}
	return nil, false
}

// Store maps field identity to its Field entry.
// It is not safe for concurrent use; the engine serializes access.
type Store struct {
	fields map[any]*Field
	newID  func() FieldID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		fields: make(map[any]*Field),
		newID:  func() FieldID { return FieldID(uuid.NewString()) },
	}
}

// Lookup returns the entry for key.
func (st *Store) Lookup(key any) (*Field, bool) {
	f, ok := st.fields[key]
	return f, ok
}

// Ensure returns the entry for key, creating it when missing. key must be
// comparable.
func (st *Store) Ensure(key any) *Field {
	if f, ok := st.fields[key]; ok {
		return f
	}
	f := &Field{
		id:     st.newID(),
		byName: make(map[string]*Session),
	}
	st.fields[key] = f
	return f
}

// Forget drops the entry for key and reports whether one existed.
func (st *Store) Forget(key any) bool {
	if _, ok := st.fields[key]; !ok {
		return false
	}
	delete(st.fields, key)
	return true
}

// Len returns the number of tracked fields.
func (st *Store) Len() int {
	return len(st.fields)
}
