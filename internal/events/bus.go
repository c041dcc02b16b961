package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher delivers an event to whatever transport backs the bus.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

const publishTimeout = 10 * time.Second

// Bus buffers events and publishes them from a single background goroutine.
// Emit never blocks: when the buffer is full the event is dropped and logged.
type Bus struct {
	publisher Publisher
	logger    *slog.Logger
	queue     chan Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewBus(publisher Publisher, bufferSize int, logger *slog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Bus{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan Event, bufferSize),
	}
}

// Start launches the publishing loop. It returns immediately.
func (b *Bus) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for ev := range b.queue {
			b.publish(ev)
		}
	}()
}

func (b *Bus) publish(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.publisher.Publish(ctx, ev); err != nil {
		b.logger.Error("failed to publish event", "event", ev.Name, "user_id", ev.UserID, "error", err)
		return
	}
	b.logger.Debug("published event", "event", ev.Name, "user_id", ev.UserID)
}

// Emit queues ev and reports whether it was accepted.
func (b *Bus) Emit(ctx context.Context, ev Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("event emitted after bus closed", "event", ev.Name)
		return false
	}

	select {
	case b.queue <- ev:
		return true
	default:
		b.logger.Warn("event buffer full, dropping event", "event", ev.Name, "user_id", ev.UserID)
		return false
	}
}

// EmitAll queues every event in order.
func (b *Bus) EmitAll(ctx context.Context, evs []Event) {
	for _, ev := range evs {
		b.Emit(ctx, ev)
	}
}

// Close stops accepting events and waits until the buffered ones are published
// or ctx expires.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogPublisher only logs events. Used when no transport is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, ev Event) error {
	p.Logger.Info("event", "name", ev.Name, "user_id", ev.UserID, "email", ev.Email)
	return nil
}
