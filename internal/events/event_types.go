package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventTokensIssued    EventType = "tokens_issued"
	EventTokensRefreshed EventType = "tokens_refreshed"
	EventLoginFailed     EventType = "login_failed"
)

// Event represents an authentication event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh ID and the given time.
func NewEvent(eventType EventType, subject string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// TokensIssuedPayload payload.
type TokensIssuedPayload struct {
	AccessTokenExpiresIn  int64 `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int64 `json:"refresh_token_expires_in"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}
