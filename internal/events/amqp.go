package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQP publishes events to a durable topic exchange, routed by event type.
// The connection is opened lazily and reopened after a failure.
type AMQP struct {
	url      string
	exchange string
	logger   *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ Publisher = (*AMQP)(nil)

// NewAMQP connects to the broker and declares the exchange.
func NewAMQP(url, exchange string, logger *slog.Logger) (*AMQP, error) {
	if exchange == "" {
		return nil, errors.New("amqp exchange is required")
	}
	p := &AMQP{url: url, exchange: exchange, logger: logger}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQP) connectLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *AMQP) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Publish sends events in order. It stops at the first failure.
func (p *AMQP) Publish(ctx context.Context, events ...Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range events {
		msg, err := publishing(e)
		if err != nil {
			return err
		}

		if p.ch == nil || p.ch.IsClosed() {
			p.resetLocked()
			if err := p.connectLocked(); err != nil {
				return err
			}
		}

		if err := p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, msg); err != nil {
			p.resetLocked()
			return fmt.Errorf("publish %s: %w", e.Type, err)
		}
		p.logger.Debug("event published", "type", e.Type, "user_id", e.UserID)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func publishing(e Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts.UTC(),
		Type:         e.Type,
		Body:         body,
	}, nil
}
