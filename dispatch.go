package linehook

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/RodrimaradoPT/linehook/line"
)

// HandlerFunc handles one webhook event.
type HandlerFunc func(ctx context.Context, ev line.Event) error

const selectorAny = "*"

// Dispatcher routes events to handlers registered under a selector: a bare
// event type, a message subtype, or the wildcard. Registration order is
// preserved within a selector and duplicate registrations run once per
// registration. A Dispatcher belongs to a single webhook request; nothing
// stops calling Dispatch twice, but each request gets a fresh instance so
// there is no cross-request state to protect.
type Dispatcher struct {
	handlers map[string][]HandlerFunc
}

// NewDispatcher creates an empty registry.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]HandlerFunc)}
}

// On registers fn for events of the given bare type.
func (d *Dispatcher) On(t line.EventType, fn HandlerFunc) {
	d.add(string(t), fn)
}

// OnMessage registers fn for message events carrying the given subtype.
func (d *Dispatcher) OnMessage(mt line.MessageType, fn HandlerFunc) {
	d.add(messageSelector(mt), fn)
}

// OnAny registers fn for every event.
func (d *Dispatcher) OnAny(fn HandlerFunc) {
	d.add(selectorAny, fn)
}

func (d *Dispatcher) add(selector string, fn HandlerFunc) {
	d.handlers[selector] = append(d.handlers[selector], fn)
}

// matched returns the handlers for ev in launch order: wildcard first, then
// the message subtype, then the bare event type. User code may rely on that
// order for side effects, so it is part of the contract.
func (d *Dispatcher) matched(ev line.Event) []HandlerFunc {
	var out []HandlerFunc
	out = append(out, d.handlers[selectorAny]...)
	if ev.Type == line.EventMessage && ev.Message != nil && ev.Message.Type != "" {
		out = append(out, d.handlers[messageSelector(ev.Message.Type)]...)
	}
	out = append(out, d.handlers[string(ev.Type)]...)
	return out
}

// Dispatch runs every matched handler for every event in the batch. All
// matched handlers are launched concurrently, in deterministic launch order
// across the batch, and Dispatch returns only once all of them have
// settled. The first handler error is returned after the join; a failing
// handler never cancels its siblings. Completion order between handlers is
// not defined.
func (d *Dispatcher) Dispatch(ctx context.Context, events []line.Event) error {
	var g errgroup.Group
	for _, ev := range events {
		for _, fn := range d.matched(ev) {
			ev, fn := ev, fn
			g.Go(func() error {
				return fn(ctx, ev)
			})
		}
	}
	return g.Wait()
}

func messageSelector(mt line.MessageType) string {
	return string(line.EventMessage) + ":" + string(mt)
}
