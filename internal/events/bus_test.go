package events

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBus_DispatchOrder(t *testing.T) {
	b := NewBus()
	var got []string

	b.Subscribe(MailGiven, func(Event) { got = append(got, "first") })
	b.SubscribeAll(func(e Event) { got = append(got, "all:"+e.Name) })
	b.Subscribe(MailGiven, func(Event) { got = append(got, "second") })
	b.Subscribe(QuestGiven, func(Event) { got = append(got, "quest") })

	b.Publish(Event{Name: MailGiven})

	exp := []string{"first", "all:" + MailGiven, "second"}
	testutil.AssertEqual(t, "count", len(got), len(exp))
	for i := range exp {
		testutil.AssertEqual(t, "handler", got[i], exp[i])
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	sub := b.Subscribe(ConversationEnded, func(Event) { calls++ })

	b.Publish(Event{Name: ConversationEnded})
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)
	b.Publish(Event{Name: ConversationEnded})

	testutil.AssertEqual(t, "calls", calls, 1)
	testutil.AssertEqual(t, "subscribers", b.Len(), 0)
}

func TestBus_UnsubscribeDuringDispatch(t *testing.T) {
	b := NewBus()
	calls := 0
	var sub Subscription
	sub = b.Subscribe(Notification, func(Event) {
		calls++
		b.Unsubscribe(sub)
	})
	b.Subscribe(Notification, func(Event) { calls++ })

	b.Publish(Event{Name: Notification})
	b.Publish(Event{Name: Notification})

	testutil.AssertEqual(t, "calls", calls, 3)
}

func TestBus_Payload(t *testing.T) {
	b := NewBus()
	var got Event
	b.Subscribe(CoinsGiven, func(e Event) { got = e })

	b.Publish(Event{Name: CoinsGiven, Data: map[string]any{"amount": 7}})

	testutil.AssertEqual(t, "amount", got.Data["amount"], any(7))
}
