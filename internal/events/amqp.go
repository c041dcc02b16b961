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

// QueueUserRegistered is the durable queue registration events are routed to.
const QueueUserRegistered = "user.registered"

// AMQPPublisher publishes events as persistent JSON messages on the default
// exchange. The connection is opened lazily and dropped after any failure.
type AMQPPublisher struct {
	url    string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

func queueFor(ev Event) string {
	switch ev.Name {
	case UserRegistered:
		return QueueUserRegistered
	default:
		return ev.Name
	}
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	queue := queueFor(ev)
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.reset()
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Name,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// Handler processes one consumed event.
type Handler func(ctx context.Context, ev Event) error

const maxBackoff = 30 * time.Second

// Consume reads events from queue until ctx is cancelled, reconnecting with
// exponential backoff when the broker goes away. Messages that fail to decode
// or handle are rejected without requeue.
func Consume(ctx context.Context, url, queue string, handle Handler, logger *slog.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("failed to dial broker", "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queue, handle, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("consume loop ended, reconnecting", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, handle Handler, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("failed to set QoS", "error", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleDelivery(ctx, d.Body, handle); err != nil {
				logger.Error("failed to handle message", "queue", queue, "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleDelivery(ctx context.Context, body []byte, handle Handler) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return handle(ctx, ev)
}
