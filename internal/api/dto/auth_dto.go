package dto

import (
	"time"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// LoginRequest payload. Username also accepts the account email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse mirrors the mobile login payload: grants and the admin
// flag travel with the account so clients can scope themselves.
type UserResponse struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Role         domain.UserRole `json:"role"`
	WarehouseIDs []int64         `json:"warehouses"`
	IsAdmin      bool            `json:"isAdmin"`
}

// CreateUserRequest is the admin account-provisioning payload.
type CreateUserRequest struct {
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Role         domain.UserRole `json:"role"`
	WarehouseIDs []int64         `json:"warehouseIds"`
}

// UpdateGrantsRequest replaces a user's warehouse grants.
type UpdateGrantsRequest struct {
	WarehouseIDs []int64 `json:"warehouseIds"`
}

// ResetPasswordRequest sets a new password for a user.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// CreateWarehouseRequest payload.
type CreateWarehouseRequest struct {
	Name string `json:"name"`
}
