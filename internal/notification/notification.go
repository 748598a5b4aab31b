// Package notification delivers best-effort messages about lifecycle events.
// Dispatch is fire-and-forget relative to the state transition that produced
// the event: a transition is successful once persisted, and a failed or
// dropped notification is logged, never surfaced to the caller.
package notification

import (
	"context"
	"time"

	id "admitly/pkg/domain"
)

// EventType names a notification-worthy occurrence.
type EventType string

const (
	EventApplicationSubmitted     EventType = "application.submitted"
	EventApplicationStatusChanged EventType = "application.status_changed"
)

// Event is the notify(user, event) contract. Status carries the application
// status after the transition.
type Event struct {
	Type          EventType        `json:"type"`
	UserID        id.UserID        `json:"user_id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	Status        string           `json:"status"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// Dispatcher accepts events for asynchronous delivery. Implementations must
// never block the caller and never return delivery failures to it.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// Sink is a delivery backend (log line, Kafka topic, mail gateway adapter).
type Sink interface {
	Send(ctx context.Context, event Event) error
}
