package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherPublish(t *testing.T) {
	t.Run("handlers receive matching events only", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		var created, commented int
		d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
			created++
			return nil
		})
		d.Subscribe(EventCommentAdded, func(ctx context.Context, e Event) error {
			commented++
			return nil
		})

		_ = d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 1})
		_ = d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 2})
		_ = d.Publish(context.Background(), Event{Type: EventCommentAdded, TicketID: 1})

		if created != 2 || commented != 1 {
			t.Errorf("created=%d commented=%d, want 2 and 1", created, commented)
		}
	})

	t.Run("handler error does not stop later handlers", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		var reached bool
		d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
			return errors.New("boom")
		})
		d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
			reached = true
			return nil
		})

		if err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		if !reached {
			t.Error("second handler not invoked after first errored")
		}
	})
}
