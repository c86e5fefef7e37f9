// Package events emits domain events after authorized mutations commit.
// Delivery is best-effort and at-most-once: a failed enqueue is logged and
// never rolls back the mutation it follows.
package events

import (
	"encoding/json"
	"time"
)

// Kind enumerates the domain event kinds.
type Kind string

const (
	KindCreated      Kind = "created"
	KindUpdated      Kind = "updated"
	KindDeleted      Kind = "deleted"
	KindManagerSet   Kind = "manager_set"
	KindManagerUnset Kind = "manager_unset"
	KindActivated    Kind = "activated"
	KindDeactivated  Kind = "deactivated"
)

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCreated, KindUpdated, KindDeleted, KindManagerSet,
		KindManagerUnset, KindActivated, KindDeactivated:
		return true
	}
	return false
}

// Event is the typed notification emitted after a mutation.
type Event struct {
	Kind       Kind      `json:"kind"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	ActorID    int64     `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TaskTypeNotify is the asynq task type carrying domain events.
const TaskTypeNotify = "event:notify"

// Marshal encodes the event as a task payload.
func (e Event) Marshal() ([]byte, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return json.Marshal(e)
}

// Unmarshal decodes a task payload back into an event.
func Unmarshal(payload []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(payload, &e)
	return e, err
}
