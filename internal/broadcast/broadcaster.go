package broadcast

import (
	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/observability"
)

// Backplane relays events to sibling broadcaster instances. Optional; the
// default deployment is a single process with no backplane.
type Backplane interface {
	Forward(event Event)
}

// Broadcaster fans ticket events out to live connections grouped by
// warehouse topic. One instance owns one registry; fan-out is best-effort
// and never blocks or fails the caller.
type Broadcaster struct {
	registry  *Registry
	logger    *zap.Logger
	metrics   *observability.Metrics
	backplane Backplane
}

// NewBroadcaster creates a broadcaster over its own registry.
func NewBroadcaster(queueSize int, logger *zap.Logger, metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{
		registry: NewRegistry(queueSize),
		logger:   logger,
		metrics:  metrics,
	}
}

// AttachBackplane wires an optional cross-instance relay. Must be called
// before the broadcaster starts receiving traffic.
func (b *Broadcaster) AttachBackplane(bp Backplane) {
	b.backplane = bp
}

// Connect registers a live connection and returns its handle.
func (b *Broadcaster) Connect() *Conn {
	return b.registry.Connect()
}

// Subscribe joins the connection to a warehouse topic.
func (b *Broadcaster) Subscribe(conn *Conn, warehouseID int64) {
	b.registry.Subscribe(conn, WarehouseTopic(warehouseID))
}

// Unsubscribe leaves a warehouse topic.
func (b *Broadcaster) Unsubscribe(conn *Conn, warehouseID int64) {
	b.registry.Unsubscribe(conn, WarehouseTopic(warehouseID))
}

// Disconnect tears the connection down; later publishes never reach it.
func (b *Broadcaster) Disconnect(conn *Conn) {
	b.registry.Disconnect(conn)
}

// Publish delivers the event to every connection in the implicit "all"
// audience and to the subscribers of the event's warehouse topic. Always
// returns without blocking: a saturated or torn-down connection is dropped
// from membership, never waited on, and never fails the publish.
func (b *Broadcaster) Publish(event Event) {
	b.deliverLocal(event)
	if b.backplane != nil {
		b.backplane.Forward(event)
	}
}

// DeliverLocal injects an event into this instance's connections without
// re-forwarding it. The backplane uses it for events that originated on a
// sibling instance.
func (b *Broadcaster) DeliverLocal(event Event) {
	b.deliverLocal(event)
}

func (b *Broadcaster) deliverLocal(event Event) {
	for _, f := range event.frames() {
		b.metrics.RecordEventPublished(f.eventType)
		for _, conn := range b.registry.audience(f.topics) {
			b.enqueue(conn, f.payload)
		}
	}
}

// enqueue is the only delivery path. The send never blocks; a full queue
// means the consumer is too slow to keep its membership.
func (b *Broadcaster) enqueue(conn *Conn, payload []byte) {
	select {
	case <-conn.Done():
		return
	default:
	}

	select {
	case conn.out <- payload:
	default:
		b.registry.Disconnect(conn)
		b.metrics.RecordConnectionDropped()
		b.logger.Warn("dropping slow connection", zap.String("conn_id", conn.ID()))
	}
}
