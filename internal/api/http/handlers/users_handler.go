package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warehouse-ticketing/internal/api/dto"
	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/service"
	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

// AuthHandler exposes login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login authenticates and returns a token with the account, its grants
// and the admin flag, so clients can scope their warehouse pickers
// without a second round trip.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	user, token, expiresAt, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
		"user":       toUserResponse(user),
	})
}

func toUserResponse(user *domain.User) dto.UserResponse {
	grants := user.WarehouseIDs
	if grants == nil {
		grants = []int64{}
	}
	return dto.UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		WarehouseIDs: grants,
		IsAdmin:      user.IsAdmin(),
	}
}
