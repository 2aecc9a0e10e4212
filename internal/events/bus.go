// Package events is a synchronous publish/subscribe registry. Handlers run on
// the publisher's goroutine, in the order they subscribed.
package events

import "slices"

const (
	ConversationStarted = "conversationStarted"
	ConversationEnded   = "conversationEnded"
	QuestGiven          = "questGiven"
	MailGiven           = "mailGiven"
	CoinsGiven          = "coinsGiven"
	MailCollected       = "mailCollected"
	MailDelivered       = "mailDelivered"
	QuestCompleted      = "questCompleted"
	Notification        = "notification"
	PhaseChanged        = "phaseChanged"
)

// Event is a named occurrence with an optional payload.
type Event struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

type Handler func(Event)

// Subscription identifies a registered handler so it can be removed.
type Subscription struct {
	id   uint64
	name string
}

type subscriber struct {
	id      uint64
	name    string // empty for catch-all
	handler Handler
}

// Bus dispatches events to subscribers. It is not safe for concurrent use.
type Bus struct {
	nextId uint64
	subs   []subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for events called name.
func (b *Bus) Subscribe(name string, handler Handler) Subscription {
	return b.add(name, handler)
}

// SubscribeAll registers handler for every event.
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	return b.add("", handler)
}

func (b *Bus) add(name string, handler Handler) Subscription {
	b.nextId++
	b.subs = append(b.subs, subscriber{id: b.nextId, name: name, handler: handler})
	return Subscription{id: b.nextId, name: name}
}

// Unsubscribe removes a handler. Removing twice is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.subs = slices.DeleteFunc(b.subs, func(s subscriber) bool {
		return s.id == sub.id
	})
}

// Publish calls every matching handler before returning. Handlers added or
// removed during dispatch take effect on the next Publish.
func (b *Bus) Publish(e Event) {
	subs := slices.Clone(b.subs)
	for _, s := range subs {
		if s.name == "" || s.name == e.Name {
			s.handler(e)
		}
	}
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	return len(b.subs)
}
