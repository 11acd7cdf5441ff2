package events

import (
	"time"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventCommentAdded        EventType = "comment_added"
	EventTicketStatusChanged EventType = "status_changed"
)

// Event represents a domain event emitted by services after the owning
// record has been committed. Events are ephemeral: never persisted, never
// retried.
type Event struct {
	Type        EventType
	TicketID    int64
	WarehouseID int64
	ActorID     string
	Timestamp   time.Time
	Payload     interface{}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ProblemType string
	CreatedAt   time.Time
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID int64
	Content   string
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus
	NewStatus domain.TicketStatus
}
