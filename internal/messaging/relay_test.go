package messaging

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/mailsphere/internal/events"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	err  error
	sent []published
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{subject: subject, data: data})
	return nil
}

func TestEventRelay_Subject(t *testing.T) {
	tests := map[string]struct {
		prefix string
		name   string
		exp    string
	}{
		"default prefix": {
			name: events.MailCollected,
			exp:  "mailsphere.events.mailCollected",
		},
		"custom prefix": {
			prefix: "town",
			name:   events.PhaseChanged,
			exp:    "town.phaseChanged",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewEventRelay(&fakePublisher{}, tt.prefix)
			testutil.AssertEqual(t, "subject", r.Subject(tt.name), tt.exp)
		})
	}
}

// busSource adapts *events.Bus to EventSource by subscribing to every event.
type busSource struct{ *events.Bus }

func (b busSource) Subscribe(h events.Handler) events.Subscription { return b.SubscribeAll(h) }

func TestEventRelay_Attach(t *testing.T) {
	bus := events.NewBus()
	pub := &fakePublisher{}
	r := NewEventRelay(pub, "")

	detach := r.Attach(busSource{bus})
	bus.Publish(events.Event{Name: events.CoinsGiven, Data: map[string]any{"coins": 5}})

	testutil.AssertEqual(t, "sent", len(pub.sent), 1)
	testutil.AssertEqual(t, "subject", pub.sent[0].subject, "mailsphere.events.coinsGiven")

	var got events.Event
	if err := json.Unmarshal(pub.sent[0].data, &got); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	testutil.AssertEqual(t, "name", got.Name, events.CoinsGiven)
	coins, _ := got.Data["coins"].(float64)
	testutil.AssertEqual(t, "coins", coins, 5.0)

	detach()
	bus.Publish(events.Event{Name: events.CoinsGiven})
	testutil.AssertEqual(t, "sent after detach", len(pub.sent), 1)
}

func TestEventRelay_PublishErrors(t *testing.T) {
	tests := map[string]struct {
		err error
	}{
		"not started": {err: ErrNotStarted},
		"wrapped":     {err: fmt.Errorf("flush: %w", ErrNotStarted)},
		"other":       {err: fmt.Errorf("connection reset")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pub := &fakePublisher{err: tt.err}
			r := NewEventRelay(pub, "")

			// must not panic
			r.Handle(events.Event{Name: events.Notification})
			testutil.AssertEqual(t, "sent", len(pub.sent), 0)
		})
	}
}

func TestNatsServer_NotStarted(t *testing.T) {
	s, err := NewNatsServer(WithHost("127.0.0.1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = s.Publish("x", nil)
	testutil.AssertErrorContains(t, err, "not started")

	_, err = s.Subscribe("x", func([]byte) {})
	testutil.AssertErrorContains(t, err, "not started")
}

func TestEventRelay_Scoped(t *testing.T) {
	pub := &fakePublisher{}
	r := NewEventRelay(pub, "").Scoped("abc")

	r.Handle(events.Event{Name: events.MailDelivered})

	testutil.AssertEqual(t, "sent", len(pub.sent), 1)
	testutil.AssertEqual(t, "subject", pub.sent[0].subject, "mailsphere.events.abc.mailDelivered")
}
