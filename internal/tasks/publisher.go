package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/hugh/rally/internal/events"
	"github.com/hugh/rally/pkg/queue"
)

const verificationMaxRetry = 5

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher turns bus events into asynq tasks.
type Publisher struct {
	client Enqueuer
}

func NewPublisher(client Enqueuer) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	switch ev.Name {
	case events.UserRegistered:
		task, err := NewVerificationEmailTask(VerificationEmailPayload{UserID: ev.UserID})
		if err != nil {
			return err
		}
		if _, err := p.client.EnqueueContext(ctx, task,
			asynq.Queue(queue.QueueMail),
			asynq.MaxRetry(verificationMaxRetry),
		); err != nil {
			return fmt.Errorf("enqueue %s: %w", TypeVerificationEmail, err)
		}
		return nil
	default:
		return fmt.Errorf("no task registered for event %q", ev.Name)
	}
}
