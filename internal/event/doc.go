// Package event provides a small in-process publish/subscribe bus.
//
// Publishers emit typed events under hierarchical topics; subscribers
// register a topic pattern (see package topic for wildcard rules) and a
// handler. Delivery is synchronous: Publish returns after every matching
// handler has run, in subscription order. A handler that panics or fails does
// not stop delivery to the others.
//
// # Usage
//
//	bus := event.NewBus()
//	sub, _ := bus.SubscribeFunc("autocomplete.session.*", func(ctx context.Context, ev any) error {
//		fmt.Println(event.TopicOf(ev))
//		return nil
//	})
//	defer bus.Unsubscribe(sub)
//
//	bus.Publish(ctx, event.NewEvent("autocomplete.session.shown", payload, "engine"))
package event
