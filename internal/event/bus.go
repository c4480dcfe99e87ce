package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dshills/mentions/internal/event/topic"
)

// Handler processes events delivered by the bus.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// ErrorHandler is called for every handler failure, including panics.
type ErrorHandler func(event any, err error)

// Stats holds bus counters.
type Stats struct {
	EventsPublished  uint64
	EventsDelivered  uint64
	HandlersExecuted uint64
	HandlerErrors    uint64
	HandlerPanics    uint64
	Subscriptions    int
}

// Option configures a Bus.
type Option func(*Bus)

// WithErrorHandler sets the handler failure callback.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Bus) {
		b.onError = h
	}
}

// Bus is a synchronous publish/subscribe event bus.
// It is safe for concurrent use; handlers run on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	nextID uint64

	onError ErrorHandler

	eventsPublished  atomic.Uint64
	eventsDelivered  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...Option) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// Once cancels the subscription after its first successful delivery.
func Once() SubscriptionOption {
	return func(s *Subscription) {
		s.once = true
	}
}

// Subscription is a registered handler for a topic pattern.
type Subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	once    bool
	active  atomic.Bool
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Pattern returns the topic pattern the subscription matches.
func (s *Subscription) Pattern() topic.Topic {
	return s.pattern
}

// IsActive returns false once the subscription has been cancelled.
func (s *Subscription) IsActive() bool {
	return s.active.Load()
}

// Subscribe registers handler for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:      fmt.Sprintf("sub-%d", b.nextID),
		pattern: pattern,
		handler: handler,
	}
	for _, opt := range opts {
		opt(sub)
	}
	sub.active.Store(true)
	b.subs = append(b.subs, sub)
	return sub, nil
}

// SubscribeFunc registers a handler function.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			s.active.Store(false)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to every matching subscription and returns once
// all handlers have run. Handler failures are counted and reported to the
// error handler; they are not returned.
func (b *Bus) Publish(ctx context.Context, event any) error {
	eventTopic := TopicOf(event)
	if eventTopic == "" {
		return ErrInvalidEvent
	}

	b.mu.RLock()
	var matched []*Subscription
	for _, s := range b.subs {
		if eventTopic.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	b.eventsPublished.Add(1)

	for _, sub := range matched {
		if !sub.IsActive() {
			continue
		}
		err := b.dispatch(ctx, sub, event)
		b.handlersExecuted.Add(1)
		if err != nil {
			b.handlerErrors.Add(1)
			if b.onError != nil {
				b.onError(event, err)
			}
			continue
		}
		b.eventsDelivered.Add(1)
		if sub.once {
			_ = b.Unsubscribe(sub)
		}
	}

	return nil
}

func (b *Bus) dispatch(ctx context.Context, sub *Subscription, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &PanicError{SubscriptionID: sub.id, Topic: string(sub.pattern), Value: r}
		}
	}()

	if herr := sub.handler.Handle(ctx, event); herr != nil {
		return &HandlerError{SubscriptionID: sub.id, Topic: string(sub.pattern), Err: herr}
	}
	return nil
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:  b.eventsPublished.Load(),
		EventsDelivered:  b.eventsDelivered.Load(),
		HandlersExecuted: b.handlersExecuted.Load(),
		HandlerErrors:    b.handlerErrors.Load(),
		HandlerPanics:    b.handlerPanics.Load(),
		Subscriptions:    n,
	}
}
