// Package queue carries enrollment notifications over RabbitMQ.
package queue

import "time"

// EnrollmentQueue is the durable queue enrollment changes are published to.
const EnrollmentQueue = "enrollment.changed"

// Actions carried by EnrollmentEvent.
const (
	ActionEnrolled   = "enrolled"
	ActionUnenrolled = "unenrolled"
)

// EnrollmentEvent is published after an enrollment is created or removed.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type EnrollmentEvent struct {
	Action    string    `json:"action"`
	EventID   uint64    `json:"event_id"`
	EventName string    `json:"event_name,omitempty"`
	UserID    uint64    `json:"user_id"`
	At        time.Time `json:"at"`
}
