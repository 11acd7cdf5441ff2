package broadcast

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/observability"
)

func newTestBroadcaster(queueSize int) *Broadcaster {
	return NewBroadcaster(queueSize, zap.NewNop(), observability.NewMetrics())
}

// drain collects everything currently queued for a connection.
func drain(conn *Conn) []map[string]any {
	var frames []map[string]any
	for {
		select {
		case payload := <-conn.Outbound():
			var decoded map[string]any
			if err := json.Unmarshal(payload, &decoded); err == nil {
				frames = append(frames, decoded)
			}
		default:
			return frames
		}
	}
}

func frameTypes(frames []map[string]any) []string {
	types := make([]string, 0, len(frames))
	for _, f := range frames {
		types = append(types, f["type"].(string))
	}
	return types
}

func TestPublishAudience(t *testing.T) {
	b := newTestBroadcaster(16)

	plain := b.Connect()
	scoped := b.Connect()
	b.Subscribe(scoped, 5)

	b.Publish(Event{Kind: KindTicketCreated, TicketID: 7, WarehouseID: 5, ProblemType: "damaged goods", CreatedAt: time.Now()})

	t.Run("all-topic connection gets ticket_created only", func(t *testing.T) {
		require.Equal(t, []string{"ticket_created"}, frameTypes(drain(plain)))
	})

	t.Run("warehouse subscriber gets both creation frames", func(t *testing.T) {
		require.Equal(t, []string{"ticket_created", "new_ticket"}, frameTypes(drain(scoped)))
	})

	t.Run("other-warehouse event still reaches all but not the topic frame", func(t *testing.T) {
		b.Publish(Event{Kind: KindTicketCreated, TicketID: 8, WarehouseID: 9, CreatedAt: time.Now()})
		require.Equal(t, []string{"ticket_created"}, frameTypes(drain(scoped)))
	})
}

func TestPublishCommentDeduplicated(t *testing.T) {
	b := newTestBroadcaster(16)

	// Subscribed to the warehouse topic AND implicitly in "all": the
	// comment frame must arrive exactly once.
	conn := b.Connect()
	b.Subscribe(conn, 3)

	b.Publish(Event{Kind: KindCommentAdded, TicketID: 11, WarehouseID: 3, AuthorID: "u1"})

	frames := drain(conn)
	require.Len(t, frames, 1)
	require.Equal(t, "comment_added", frames[0]["type"])
	require.EqualValues(t, 11, frames[0]["ticketId"])
	require.Equal(t, "u1", frames[0]["authorId"])
}

func TestNoReplayAfterLateSubscribe(t *testing.T) {
	b := newTestBroadcaster(16)

	b.Publish(Event{Kind: KindTicketCreated, TicketID: 1, WarehouseID: 5, CreatedAt: time.Now()})

	late := b.Connect()
	b.Subscribe(late, 5)
	require.Empty(t, drain(late), "connection subscribed after publish must not receive the earlier event")

	b.Publish(Event{Kind: KindTicketCreated, TicketID: 2, WarehouseID: 5, CreatedAt: time.Now()})
	require.Equal(t, []string{"ticket_created", "new_ticket"}, frameTypes(drain(late)))
}

func TestPerConnectionOrderPreserved(t *testing.T) {
	b := newTestBroadcaster(256)
	conn := b.Connect()

	for i := 1; i <= 100; i++ {
		b.Publish(Event{Kind: KindStatusChanged, TicketID: int64(i), WarehouseID: 1, Status: "OPEN"})
	}

	frames := drain(conn)
	require.Len(t, frames, 100)
	for i, f := range frames {
		require.EqualValues(t, i+1, f["id"], "frame %d out of order", i)
	}
}

func TestSubscribeUnsubscribeIdempotent(t *testing.T) {
	b := newTestBroadcaster(16)
	conn := b.Connect()

	b.Subscribe(conn, 5)
	b.Subscribe(conn, 5)
	b.Publish(Event{Kind: KindTicketCreated, TicketID: 1, WarehouseID: 5, CreatedAt: time.Now()})
	require.Equal(t, []string{"ticket_created", "new_ticket"}, frameTypes(drain(conn)))

	b.Unsubscribe(conn, 5)
	b.Unsubscribe(conn, 5)
	b.Publish(Event{Kind: KindTicketCreated, TicketID: 2, WarehouseID: 5, CreatedAt: time.Now()})
	require.Equal(t, []string{"ticket_created"}, frameTypes(drain(conn)))
}

func TestDisconnectStopsDelivery(t *testing.T) {
	b := newTestBroadcaster(16)
	conn := b.Connect()
	b.Subscribe(conn, 5)

	b.Disconnect(conn)
	require.Equal(t, 0, b.registry.Len())

	b.Publish(Event{Kind: KindTicketCreated, TicketID: 1, WarehouseID: 5, CreatedAt: time.Now()})
	require.Empty(t, drain(conn))

	select {
	case <-conn.Done():
	default:
		t.Fatal("Done not signalled after disconnect")
	}
}

func TestSlowConnectionDropped(t *testing.T) {
	b := newTestBroadcaster(1)
	slow := b.Connect()
	healthy := b.Connect()

	// Nobody drains slow: the first publish fills its queue, the second
	// overflows it and must drop the connection instead of blocking.
	b.Publish(Event{Kind: KindStatusChanged, TicketID: 1, WarehouseID: 2, Status: "OPEN"})
	b.Publish(Event{Kind: KindStatusChanged, TicketID: 2, WarehouseID: 2, Status: "CLOSED"})

	require.Equal(t, 1, b.registry.Len(), "slow connection should be removed from membership")

	select {
	case <-slow.Done():
	default:
		t.Fatal("slow connection not torn down")
	}

	b.Publish(Event{Kind: KindStatusChanged, TicketID: 3, WarehouseID: 2, Status: "OPEN"})
	require.Len(t, drain(healthy), 3)
}

func TestConcurrentDisconnectDuringPublish(t *testing.T) {
	b := newTestBroadcaster(4)

	conns := make([]*Conn, 50)
	for i := range conns {
		conns[i] = b.Connect()
		b.Subscribe(conns[i], 1)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b.Publish(Event{Kind: KindCommentAdded, TicketID: int64(i), WarehouseID: 1, AuthorID: "x"})
		}
	}()
	go func() {
		defer wg.Done()
		for _, conn := range conns {
			b.Disconnect(conn)
		}
	}()
	wg.Wait()

	// The publisher's perspective: everything completed without blocking
	// or panicking, and membership is fully torn down.
	require.Equal(t, 0, b.registry.Len())
}
