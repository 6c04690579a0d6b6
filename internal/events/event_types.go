package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticketflex/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventUserRegistered EventType = "user_registered"
	EventSessionStarted EventType = "session_started"
	EventSessionEnded   EventType = "session_ended"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, actor string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// TicketPayload accompanies ticket_created and ticket_updated.
type TicketPayload struct {
	TicketID int64                 `json:"ticketId"`
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Status   domain.TicketStatus   `json:"status"`
	// PreviousStatus is set on updates that moved the ticket.
	PreviousStatus domain.TicketStatus `json:"previousStatus,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketID int64 `json:"ticketId"`
	Existed  bool  `json:"existed"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// SessionPayload accompanies session_started and session_ended.
type SessionPayload struct {
	Email string `json:"email"`
}
