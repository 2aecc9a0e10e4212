package messaging

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/pixil98/mailsphere/internal/events"
)

const DefaultSubjectPrefix = "mailsphere.events"

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// EventSource is anything that fans out simulation events.
type EventSource interface {
	Subscribe(handler events.Handler) events.Subscription
	Unsubscribe(sub events.Subscription)
}

// EventRelay mirrors events onto message subjects named after the event.
type EventRelay struct {
	publisher Publisher
	prefix    string
}

func NewEventRelay(p Publisher, prefix string) *EventRelay {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &EventRelay{publisher: p, prefix: prefix}
}

// Subject returns the subject an event called name is published to.
func (r *EventRelay) Subject(name string) string {
	return r.prefix + "." + name
}

// Scoped returns a relay publishing below prefix.scope, so that several
// sources can share one server.
func (r *EventRelay) Scoped(scope string) *EventRelay {
	return &EventRelay{publisher: r.publisher, prefix: r.Subject(scope)}
}

// Attach subscribes the relay to every event from src. The returned function
// detaches it again.
func (r *EventRelay) Attach(src EventSource) func() {
	sub := src.Subscribe(r.Handle)
	return func() { src.Unsubscribe(sub) }
}

// Handle publishes a single event. Events raised before the server is
// connected are dropped.
func (r *EventRelay) Handle(e events.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Warn("encoding event", "event", e.Name, "error", err)
		return
	}

	err = r.publisher.Publish(r.Subject(e.Name), data)
	if errors.Is(err, ErrNotStarted) {
		slog.Debug("dropping event, nats not connected", "event", e.Name)
		return
	}
	if err != nil {
		slog.Warn("publishing event", "event", e.Name, "error", err)
	}
}
