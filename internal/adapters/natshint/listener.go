// Package natshint implements the push hint channel on NATS. The backend
// publishes an empty message on the hint subject whenever a web order lands;
// subscribers use it only to poll sooner than the next scheduled tick.
package natshint

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/example/comanda/internal/ports/secondary"
)

// DefaultSubject is the hint subject the backend publishes on.
const DefaultSubject = "comanda.hints.weborder"

// Listener subscribes to the hint subject on a NATS connection.
type Listener struct {
	conn    *nats.Conn
	subject string

	mu     sync.Mutex
	closed bool
}

var _ secondary.HintListener = (*Listener)(nil)

// NewListener connects to the NATS server at url. An empty subject uses
// DefaultSubject.
func NewListener(url, subject string) (*Listener, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Listener{conn: conn, subject: subject}, nil
}

// Listen invokes fn for every hint until ctx is cancelled. Message payloads
// are ignored: a hint carries no data, only urgency.
func (l *Listener) Listen(ctx context.Context, fn func()) error {
	sub, err := l.conn.Subscribe(l.subject, func(msg *nats.Msg) {
		fn()
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", l.subject, err)
	}
	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", l.subject, err)
	}
	return nil
}

// Close drains the connection. Idempotent.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.conn.Close()
	return nil
}
