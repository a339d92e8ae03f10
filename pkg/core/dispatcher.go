package core

import "context"

// Handler reacts to a fired event. Returning an error stops propagation
// for that event and surfaces the error to the caller of Fire.
type Handler func(ctx context.Context, e Event) error

// Subscriber registers one or more handlers on a dispatcher. Plugins
// implement it.
type Subscriber interface {
	Subscribe(d *Dispatcher)
}

// Dispatcher is an ordered publish/subscribe bus for lifecycle events.
// Handlers for a kind run in subscription order, each to completion
// before the next; there is no concurrent handler execution for a single
// event. Ordering holds within a kind only, so plugins that must react
// in a fixed order relative to each other subscribe in that order.
type Dispatcher struct {
	handlers map[EventKind][]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind][]Handler)}
}

// On registers a handler for an event kind. It returns the dispatcher so
// registrations chain.
func (d *Dispatcher) On(kind EventKind, h Handler) *Dispatcher {
	d.handlers[kind] = append(d.handlers[kind], h)
	return d
}

// Subscribe lets a plugin register its handlers.
func (d *Dispatcher) Subscribe(s Subscriber) *Dispatcher {
	s.Subscribe(d)
	return d
}

// Fire invokes every handler registered for the event's kind, in
// subscription order. The first handler error is returned immediately;
// later handlers for that event do not run. Handler panics are not
// recovered.
//
// Handlers registered for the fired kind while Fire is running do not
// observe the current event; they run from the next Fire of that kind.
func (d *Dispatcher) Fire(ctx context.Context, e Event) error {
	for _, h := range d.handlers[e.Kind()] {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// HandlerCount reports how many handlers are registered for a kind.
func (d *Dispatcher) HandlerCount(kind EventKind) int {
	return len(d.handlers[kind])
}
