package messaging

import (
	"context"
	"fmt"
	"log/slog"
)

// Subscriber is a server that can be subscribed to once it is ready.
type Subscriber interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Inbox hands every message on a subject to a handler for as long as it runs.
type Inbox struct {
	server  Subscriber
	subject string
	handler func(data []byte)
}

func NewInbox(s Subscriber, subject string, handler func(data []byte)) *Inbox {
	return &Inbox{
		server:  s,
		subject: subject,
		handler: handler,
	}
}

// Start waits for the server, subscribes, and blocks until ctx is cancelled.
func (i *Inbox) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-i.server.Ready():
	}

	unsubscribe, err := i.server.Subscribe(i.subject, i.handler)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", i.subject, err)
	}
	defer unsubscribe()

	slog.InfoContext(ctx, "inbox subscribed", "subject", i.subject)
	<-ctx.Done()
	return nil
}
