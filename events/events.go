// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "blog."

// Envelope wraps every published payload.
type Envelope struct {
	Subject   string          `json:"subject"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NATS publishes events on a NATS connection.
type NATS struct {
	conn *nats.Conn
	now  func() time.Time
}

// Connect dials url and returns a publisher on it.
func Connect(url string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("blogapi"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect %s: %w", url, err)
	}
	return &NATS{conn: conn, now: time.Now}, nil
}

// Publish sends v under blog.<subject>.
func (p *NATS) Publish(_ context.Context, subject string, v any) error {
	data, err := Encode(subject, v, p.now())
	if err != nil {
		return err
	}
	return p.conn.Publish(subjectPrefix+subject, data)
}

// Close flushes pending messages and closes the connection.
func (p *NATS) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// Encode builds the wire form of an event.
func Encode(subject string, v any, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", subject, err)
	}
	return json.Marshal(Envelope{
		Subject:   subject,
		Timestamp: at.UTC().Format(time.RFC3339),
		Data:      payload,
	})
}

// Subscribe delivers decoded envelopes for subject to fn until the returned
// subscription is drained.
func (p *NATS) Subscribe(subject string, fn func(Envelope)) (*nats.Subscription, error) {
	return p.conn.Subscribe(subjectPrefix+subject, func(m *nats.Msg) {
		var env Envelope
		if err := json.Unmarshal(m.Data, &env); err == nil {
			fn(env)
		}
	})
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
