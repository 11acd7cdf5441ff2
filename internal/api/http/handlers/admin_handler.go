package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warehouse-ticketing/internal/api/dto"
	"github.com/spec-kit/warehouse-ticketing/internal/observability"
	"github.com/spec-kit/warehouse-ticketing/internal/service"
	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

// AdminHandler exposes the admin panel endpoints. Routing gates every
// call behind the admin role.
type AdminHandler struct {
	admin   *service.AdminService
	metrics *observability.Metrics
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(admin *service.AdminService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{admin: admin, metrics: metrics}
}

// CreateWarehouse handles POST /api/admin/warehouses.
func (h *AdminHandler) CreateWarehouse(c *fiber.Ctx) error {
	var req dto.CreateWarehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	warehouse, err := h.admin.CreateWarehouse(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.WarehouseResponse{ID: warehouse.ID, Name: warehouse.Name})
}

// RenameWarehouse handles PUT /api/admin/warehouses/:id.
func (h *AdminHandler) RenameWarehouse(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateWarehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	warehouse, err := h.admin.RenameWarehouse(c.Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.WarehouseResponse{ID: warehouse.ID, Name: warehouse.Name})
}

// DeleteWarehouse handles DELETE /api/admin/warehouses/:id.
func (h *AdminHandler) DeleteWarehouse(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteWarehouse(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListWarehouses handles GET /api/admin/warehouses.
func (h *AdminHandler) ListWarehouses(c *fiber.Ctx) error {
	warehouses, err := h.admin.ListWarehouses(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"warehouses": toWarehouseResponses(warehouses)})
}

// CreateUser handles POST /api/admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	user, err := h.admin.CreateUser(c.Context(), service.UserCreateInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		WarehouseIDs: req.WarehouseIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.Context())
	if err != nil {
		return err
	}
	rows := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		rows = append(rows, toUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": rows})
}

// UpdateGrants handles PUT /api/admin/users/:id/warehouses. The grant set
// is replaced wholesale; the user's scope changes on their next request.
func (h *AdminHandler) UpdateGrants(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.UpdateGrantsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.admin.UpdateUserGrants(c.Context(), userID, req.WarehouseIDs); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ResetPassword handles PUT /api/admin/users/:id/password.
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return apperrors.NewValidationError("invalid id", nil)
	}
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.admin.ResetPassword(c.Context(), userID, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteTicket handles DELETE /api/admin/tickets/:id.
func (h *AdminHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteTicket(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EditComment handles PUT /api/admin/comments/:id.
func (h *AdminHandler) EditComment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := h.admin.EditComment(c.Context(), id, req.Content); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteComment handles DELETE /api/admin/comments/:id.
func (h *AdminHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteComment(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAttachment handles DELETE /api/admin/attachments/:id.
func (h *AdminHandler) DeleteAttachment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteAttachment(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Metrics handles GET /api/admin/metrics: the in-memory counters for
// quick operational checks.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	requests, errs, events, dropped := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"requests":            requests,
		"errors":              errs,
		"events_published":    events,
		"connections_dropped": dropped,
	})
}
