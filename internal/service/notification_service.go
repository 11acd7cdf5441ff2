package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/broadcast"
	"github.com/spec-kit/warehouse-ticketing/internal/events"
)

// EventPublisher is the broadcast fan-out the coordinator drives.
type EventPublisher interface {
	Publish(event broadcast.Event)
}

// NotificationService is the coordinator between ticket mutations and the
// live fan-out. Mutation services publish domain events after their record
// commits; this service translates them into broadcast frames.
// Fire-and-forget: a broadcast failure never rolls back or retries the
// mutation that triggered it.
type NotificationService struct {
	dispatcher  events.Dispatcher
	broadcaster EventPublisher
	logger      *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, broadcaster EventPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// RegisterHandlers subscribes to mutation events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket created",
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("warehouse_id", event.WarehouseID))

	payload, _ := event.Payload.(events.TicketCreatedPayload)
	n.broadcaster.Publish(broadcast.Event{
		Kind:        broadcast.KindTicketCreated,
		TicketID:    event.TicketID,
		WarehouseID: event.WarehouseID,
		ProblemType: payload.ProblemType,
		CreatedAt:   payload.CreatedAt,
	})
	return nil
}

// handleCommentAdded fans the comment out. It deliberately does not touch
// any watermark: marking viewed is a read-side action, and doing it here
// would clear the unread signal for viewers who have not seen the comment.
func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("comment added",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("author_id", event.ActorID))

	n.broadcaster.Publish(broadcast.Event{
		Kind:        broadcast.KindCommentAdded,
		TicketID:    event.TicketID,
		WarehouseID: event.WarehouseID,
		AuthorID:    event.ActorID,
		CreatedAt:   event.Timestamp,
	})
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.StatusChangedPayload)
	n.logger.Info("status changed",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("new_status", string(payload.NewStatus)))

	n.broadcaster.Publish(broadcast.Event{
		Kind:        broadcast.KindStatusChanged,
		TicketID:    event.TicketID,
		WarehouseID: event.WarehouseID,
		Status:      string(payload.NewStatus),
		CreatedAt:   event.Timestamp,
	})
	return nil
}
