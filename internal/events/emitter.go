package events

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Sink receives domain events. Services depend on this interface so tests
// can capture emissions without a queue.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Emitter enqueues events onto the background queue, fire-and-forget.
type Emitter struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewEmitter constructs an Emitter. A nil client turns emission into a no-op,
// which keeps the API usable in tests and tooling.
func NewEmitter(client *asynq.Client, logger *slog.Logger) *Emitter {
	return &Emitter{client: client, logger: logger}
}

// Emit enqueues the event. Failures are logged and swallowed: notification
// is outside the transaction boundary of the mutation it follows.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil || e.client == nil {
		return
	}
	payload, err := event.Marshal()
	if err != nil {
		e.warn("marshal event", event, err)
		return
	}
	task := asynq.NewTask(TaskTypeNotify, payload)
	if _, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		e.warn("enqueue event", event, err)
	}
}

func (e *Emitter) warn(msg string, event Event, err error) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(msg,
		slog.String("kind", string(event.Kind)),
		slog.String("resource", event.Resource),
		slog.String("resource_id", event.ResourceID),
		slog.Any("error", err),
	)
}
