package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/crewbase/crewbase/internal/events"
	"github.com/crewbase/crewbase/internal/shared"
)

// NotifyJob drains event:notify tasks into the audit trail.
type NotifyJob struct {
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewNotifyJob constructs a NotifyJob.
func NewNotifyJob(audit *shared.AuditLogger, logger *slog.Logger) *NotifyJob {
	return &NotifyJob{audit: audit, logger: logger}
}

// Handle processes one domain event. Malformed payloads are dropped rather
// than retried; audit write failures retry under the task's policy.
func (j *NotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	event, err := events.Unmarshal(t.Payload())
	if err != nil {
		j.logger.Warn("notify: bad payload", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if !event.Kind.Valid() {
		j.logger.Warn("notify: unknown event kind", slog.String("kind", string(event.Kind)))
		return asynq.SkipRetry
	}
	if err := j.audit.Record(ctx, shared.AuditLog{
		ActorID:  event.ActorID,
		Action:   string(event.Kind),
		Entity:   event.Resource,
		EntityID: event.ResourceID,
		At:       event.OccurredAt,
	}); err != nil {
		return err
	}
	j.logger.Info("event delivered",
		slog.String("kind", string(event.Kind)),
		slog.String("resource", event.Resource),
		slog.String("resource_id", event.ResourceID))
	return nil
}
