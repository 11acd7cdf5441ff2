package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warehouse-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/warehouse-ticketing/internal/auth"
)

// RouteConfig bundles everything route registration needs.
type RouteConfig struct {
	App     *fiber.App
	AuthMW  *auth.AuthMiddleware
	Auth    *handlers.AuthHandler
	Tickets *handlers.TicketHandler
	Sync    *handlers.SyncHandler
	Ws      *handlers.WebsocketHandler
	Admin   *handlers.AdminHandler
	Health  *handlers.HealthHandler
}

// RegisterRoutes wires the HTTP surface.
func RegisterRoutes(cfg RouteConfig) {
	app := cfg.App

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMW.Handle, auth.RequireAuthenticated())

	protected.Get("/warehouses", cfg.Tickets.ListWarehouses)

	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets", cfg.Tickets.List)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Put("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	protected.Post("/tickets/:id/close", cfg.Tickets.Close)
	protected.Get("/tickets/:id/comments", cfg.Tickets.ListComments)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	protected.Get("/tickets/:id/attachments", cfg.Tickets.ListAttachments)

	protected.Get("/sync/updates", cfg.Sync.Updates)
	protected.Post("/sync/unread", cfg.Sync.Unread)

	// Websocket auth rides the "token" query parameter through the same
	// middleware as the REST routes.
	app.Use("/ws/tickets", cfg.Ws.RequireUpgrade, cfg.AuthMW.Handle, auth.RequireAuthenticated())
	app.Get("/ws/tickets", cfg.Ws.Serve())

	admin := api.Group("/admin", cfg.AuthMW.Handle, auth.RequireAdmin())
	admin.Get("/warehouses", cfg.Admin.ListWarehouses)
	admin.Post("/warehouses", cfg.Admin.CreateWarehouse)
	admin.Put("/warehouses/:id", cfg.Admin.RenameWarehouse)
	admin.Delete("/warehouses/:id", cfg.Admin.DeleteWarehouse)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Put("/users/:id/warehouses", cfg.Admin.UpdateGrants)
	admin.Put("/users/:id/password", cfg.Admin.ResetPassword)
	admin.Delete("/tickets/:id", cfg.Admin.DeleteTicket)
	admin.Put("/comments/:id", cfg.Admin.EditComment)
	admin.Delete("/comments/:id", cfg.Admin.DeleteComment)
	admin.Delete("/attachments/:id", cfg.Admin.DeleteAttachment)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
