package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warehouse-ticketing/internal/broadcast"
)

// WebsocketHandler upgrades authenticated requests onto the broadcaster.
type WebsocketHandler struct {
	broadcaster *broadcast.Broadcaster
}

// NewWebsocketHandler constructs the handler.
func NewWebsocketHandler(broadcaster *broadcast.Broadcaster) *WebsocketHandler {
	return &WebsocketHandler{broadcaster: broadcaster}
}

// RequireUpgrade rejects plain HTTP requests on the socket route before
// any further middleware runs.
func (h *WebsocketHandler) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve hands the upgraded socket to the broadcaster, which runs the
// read and write loops until either side closes.
func (h *WebsocketHandler) Serve() fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		h.broadcaster.ServeConnection(ws)
	})
}
