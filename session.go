package linehook

import (
	"context"

	"github.com/RodrimaradoPT/linehook/line"
)

// Session is the per-request facade handed to application code once a
// webhook request has been verified and decoded to at least one event. It
// owns a fresh Dispatcher for this request's batch and exposes the shared
// Messaging API client for send-backs. Sessions are not reused across
// requests.
type Session struct {
	dispatcher  *Dispatcher
	client      *line.Client
	destination string
	events      []line.Event
}

func newSession(client *line.Client, destination string, events []line.Event) *Session {
	return &Session{
		dispatcher:  NewDispatcher(),
		client:      client,
		destination: destination,
		events:      events,
	}
}

// Destination returns the bot account ID the webhook was delivered to.
func (s *Session) Destination() string {
	return s.destination
}

// Events returns the decoded event batch in arrival order.
func (s *Session) Events() []line.Event {
	return s.events
}

// Client returns the underlying Messaging API client, for calls beyond
// Reply and Push.
func (s *Session) Client() *line.Client {
	return s.client
}

// On registers fn for events of the given bare type.
func (s *Session) On(t line.EventType, fn HandlerFunc) {
	s.dispatcher.On(t, fn)
}

// OnMessage registers fn for message events with the given subtype.
func (s *Session) OnMessage(mt line.MessageType, fn HandlerFunc) {
	s.dispatcher.OnMessage(mt, fn)
}

// OnAny registers fn for every event in the batch.
func (s *Session) OnAny(fn HandlerFunc) {
	s.dispatcher.OnAny(fn)
}

// Dispatch runs the registered handlers against this request's events and
// waits for all of them. See Dispatcher.Dispatch for the ordering and
// failure semantics.
func (s *Session) Dispatch(ctx context.Context) error {
	return s.dispatcher.Dispatch(ctx, s.events)
}

// Reply sends messages bound to a reply token from one of this batch's
// events.
func (s *Session) Reply(ctx context.Context, replyToken string, messages ...line.SendMessage) error {
	return s.client.Reply(ctx, replyToken, messages...)
}

// Push sends messages to a user, group, or room ID.
func (s *Session) Push(ctx context.Context, to string, messages ...line.SendMessage) error {
	return s.client.Push(ctx, to, messages...)
}
