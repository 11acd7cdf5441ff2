package broadcast

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is a handle for one live client connection. The transport adapter
// owns draining Outbound; the registry owns membership. Delivery to a
// connection preserves enqueue order (single buffered channel).
type Conn struct {
	id        string
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the connection identifier.
func (c *Conn) ID() string { return c.id }

// Outbound is the delivery queue the transport adapter drains.
func (c *Conn) Outbound() <-chan []byte { return c.out }

// Done is closed when the connection is removed from the registry.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) markDone() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Registry is the owned connection table: connection handles plus topic
// index maps. It is explicit state passed to the broadcaster, never a
// package-level global, so tests can run independent instances.
type Registry struct {
	mu        sync.RWMutex
	conns     map[string]*Conn
	topics    map[string]map[string]*Conn
	queueSize int
}

// NewRegistry builds an empty registry. queueSize is the per-connection
// outbound buffer.
func NewRegistry(queueSize int) *Registry {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Registry{
		conns:     make(map[string]*Conn),
		topics:    make(map[string]map[string]*Conn),
		queueSize: queueSize,
	}
}

// Connect registers a new connection. Every connection is implicitly a
// member of the "all" audience; warehouse topics are opt-in.
func (r *Registry) Connect() *Conn {
	conn := &Conn{
		id:   uuid.NewString(),
		out:  make(chan []byte, r.queueSize),
		done: make(chan struct{}),
	}
	r.mu.Lock()
	r.conns[conn.id] = conn
	r.mu.Unlock()
	return conn
}

// Subscribe adds the connection to a topic. Idempotent; a no-op for
// connections already disconnected.
func (r *Registry) Subscribe(conn *Conn, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, alive := r.conns[conn.id]; !alive {
		return
	}
	members, ok := r.topics[topic]
	if !ok {
		members = make(map[string]*Conn)
		r.topics[topic] = members
	}
	members[conn.id] = conn
}

// Unsubscribe removes the connection from a topic. Idempotent.
func (r *Registry) Unsubscribe(conn *Conn, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members, ok := r.topics[topic]; ok {
		delete(members, conn.id)
		if len(members) == 0 {
			delete(r.topics, topic)
		}
	}
}

// Disconnect atomically removes the connection from the table and from
// every topic, then signals Done. Publishes that already snapshotted the
// membership may still attempt an enqueue; they check Done first and the
// queue is abandoned either way.
func (r *Registry) Disconnect(conn *Conn) {
	r.mu.Lock()
	delete(r.conns, conn.id)
	for topic, members := range r.topics {
		delete(members, conn.id)
		if len(members) == 0 {
			delete(r.topics, topic)
		}
	}
	r.mu.Unlock()
	conn.markDone()
}

// audience snapshots the distinct connections subscribed to any of the
// given topics. The implicit "all" topic matches every live connection.
// The lock is held only for the map copy, never across a send.
func (r *Registry) audience(topics []string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]*Conn)
	for _, topic := range topics {
		if topic == TopicAll {
			for id, conn := range r.conns {
				seen[id] = conn
			}
			continue
		}
		for id, conn := range r.topics[topic] {
			seen[id] = conn
		}
	}

	out := make([]*Conn, 0, len(seen))
	for _, conn := range seen {
		out = append(out, conn)
	}
	return out
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
