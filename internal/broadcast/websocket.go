package broadcast

import (
	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// clientCommand is the inbound control message a socket client sends to
// manage its warehouse subscriptions, mirroring the join/leave verbs the
// hub exposed.
type clientCommand struct {
	Action      string `json:"action"`
	WarehouseID int64  `json:"warehouseId"`
}

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

// ServeConnection runs the read and write loops for one upgraded websocket
// until either side closes. The write loop owns the socket for writes; the
// read loop only parses subscription commands. Teardown from any path goes
// through Disconnect, so an in-flight publish can never observe a
// half-removed membership.
func (b *Broadcaster) ServeConnection(ws *websocket.Conn) {
	conn := b.Connect()
	defer b.Disconnect(conn)

	go b.writeLoop(ws, conn)

	for {
		var cmd clientCommand
		if err := ws.ReadJSON(&cmd); err != nil {
			return
		}
		switch cmd.Action {
		case actionSubscribe:
			b.Subscribe(conn, cmd.WarehouseID)
		case actionUnsubscribe:
			b.Unsubscribe(conn, cmd.WarehouseID)
		default:
			b.logger.Debug("ignoring unknown socket command",
				zap.String("action", cmd.Action),
				zap.String("conn_id", conn.ID()))
		}
	}
}

func (b *Broadcaster) writeLoop(ws *websocket.Conn, conn *Conn) {
	// Closing the socket unblocks the read loop once the connection is done.
	defer ws.Close() //nolint:errcheck

	for {
		select {
		case payload := <-conn.Outbound():
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				b.Disconnect(conn)
				return
			}
		case <-conn.Done():
			return
		}
	}
}
