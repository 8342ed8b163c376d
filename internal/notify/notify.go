// Package notify publishes order events for the kitchen display and other
// listeners. Delivery is best effort.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/juju/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event kinds.
const (
	OrderCreated       = "order.created"
	OrderLinesAdded    = "order.lines_added"
	OrderStatusChanged = "order.status_changed"
	BillPaid           = "bill.paid"
)

// Event is the JSON body published for every order change.
type Event struct {
	Kind       string    `json:"kind"`
	OrderID    string    `json:"order_id,omitempty"`
	BillID     string    `json:"bill_id,omitempty"`
	TableID    string    `json:"table_id"`
	UserID     string    `json:"user_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Total      float64   `json:"total,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoutingKey is the topic key. Status changes carry the new status, e.g.
// "order.status_changed.ready".
func (e Event) RoutingKey() string {
	if e.Kind == OrderStatusChanged && e.Status != "" {
		return e.Kind + "." + e.Status
	}
	return e.Kind
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop drops every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi delivers each event to every publisher in turn. A failing
// publisher does not stop the others; the first error is returned.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, event Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = errors.Trace(err)
		}
	}
	return first
}

// AMQP publishes events to a RabbitMQ topic exchange as persistent JSON
// messages.
type AMQP struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	timeout  time.Duration
	logger   *zap.Logger
}

// DialAMQP connects to url and declares exchange as a durable topic exchange.
func DialAMQP(url, exchange string, logger *zap.Logger) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Annotate(err, "dialing broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Annotate(err, "opening channel")
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Annotatef(err, "declaring exchange %q", exchange)
	}
	logger.Info("Connected to message broker", zap.String("exchange", exchange))
	return &AMQP{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		timeout:  5 * time.Second,
		logger:   logger,
	}, nil
}

// Publish implements Publisher.
func (p *AMQP) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Trace(err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, event.RoutingKey(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    event.OccurredAt.UTC(),
		Body:         body,
	})
	if err != nil {
		return errors.Annotatef(err, "publishing %s", event.RoutingKey())
	}
	p.logger.Debug("Event published", zap.String("routing_key", event.RoutingKey()))
	return nil
}

// Close shuts the channel and connection.
func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return errors.Trace(p.conn.Close())
	}
	return nil
}
