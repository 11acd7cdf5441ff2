package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/broadcast"
	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/events"
)

type capturingPublisher struct {
	published []broadcast.Event
}

func (p *capturingPublisher) Publish(event broadcast.Event) {
	p.published = append(p.published, event)
}

func TestNotificationCoordinator(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	setup := func() (events.Dispatcher, *capturingPublisher) {
		dispatcher := events.NewInMemoryDispatcher()
		publisher := &capturingPublisher{}
		svc := NewNotificationService(dispatcher, publisher, zap.NewNop())
		svc.RegisterHandlers()
		return dispatcher, publisher
	}

	t.Run("ticket created translates to a broadcast event", func(t *testing.T) {
		dispatcher, publisher := setup()

		err := dispatcher.Publish(context.Background(), events.Event{
			Type:        events.EventTicketCreated,
			TicketID:    42,
			WarehouseID: 7,
			ActorID:     "u1",
			Timestamp:   base,
			Payload: events.TicketCreatedPayload{
				ProblemType: "damaged goods",
				CreatedAt:   base,
			},
		})
		require.NoError(t, err)

		require.Len(t, publisher.published, 1)
		got := publisher.published[0]
		require.Equal(t, broadcast.KindTicketCreated, got.Kind)
		require.Equal(t, int64(42), got.TicketID)
		require.Equal(t, int64(7), got.WarehouseID)
		require.Equal(t, "damaged goods", got.ProblemType)
	})

	t.Run("comment added carries the author for audience exclusion", func(t *testing.T) {
		dispatcher, publisher := setup()

		err := dispatcher.Publish(context.Background(), events.Event{
			Type:        events.EventCommentAdded,
			TicketID:    42,
			WarehouseID: 7,
			ActorID:     "author-1",
			Timestamp:   base,
			Payload: events.CommentAddedPayload{
				CommentID: 5,
				Content:   "on it",
			},
		})
		require.NoError(t, err)

		require.Len(t, publisher.published, 1)
		got := publisher.published[0]
		require.Equal(t, broadcast.KindCommentAdded, got.Kind)
		require.Equal(t, "author-1", got.AuthorID)
	})

	t.Run("status change carries the new status", func(t *testing.T) {
		dispatcher, publisher := setup()

		err := dispatcher.Publish(context.Background(), events.Event{
			Type:        events.EventTicketStatusChanged,
			TicketID:    42,
			WarehouseID: 7,
			ActorID:     "u1",
			Timestamp:   base,
			Payload: events.StatusChangedPayload{
				OldStatus: domain.TicketStatusOpen,
				NewStatus: domain.TicketStatusResolved,
			},
		})
		require.NoError(t, err)

		require.Len(t, publisher.published, 1)
		got := publisher.published[0]
		require.Equal(t, broadcast.KindStatusChanged, got.Kind)
		require.Equal(t, string(domain.TicketStatusResolved), got.Status)
	})

	t.Run("unregistered event types are ignored", func(t *testing.T) {
		dispatcher := events.NewInMemoryDispatcher()
		publisher := &capturingPublisher{}
		NewNotificationService(dispatcher, publisher, zap.NewNop())

		err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated})
		require.NoError(t, err)
		require.Empty(t, publisher.published)
	})
}
