package domain

import "time"

// AuthEventType identifies the use case that produced an audit event.
type AuthEventType string

const (
	AuthEventLogin    AuthEventType = "login"
	AuthEventRegister AuthEventType = "register"
)

// AuthOutcome is the result recorded for an authentication attempt.
type AuthOutcome string

const (
	OutcomeSuccess AuthOutcome = "success"
	OutcomeFailure AuthOutcome = "failure"
	OutcomeError   AuthOutcome = "error"
)

// AuthEvent is an entry of the authentication audit trail.
type AuthEvent struct {
	ID         string        `json:"id"`
	Type       AuthEventType `json:"type"`
	Email      string        `json:"email"`
	Outcome    AuthOutcome   `json:"outcome"`
	IP         string        `json:"ip,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
