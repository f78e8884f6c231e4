// Package nats publishes matching events to a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// DefaultSubject receives one message per successful matching run.
const DefaultSubject = "matches.computed"

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Publisher sends ComputedEvent messages as JSON.
type Publisher struct {
	conn    conn
	subject string
}

// Connect dials NATS and returns a publisher bound to subject.
func Connect(url, subject string, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("matchmaker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return newPublisher(nc, subject), nil
}

func newPublisher(c conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: c, subject: subject}
}

// PublishComputed publishes the event and waits for the server to acknowledge the flush.
func (p *Publisher) PublishComputed(ctx context.Context, ev match.ComputedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
