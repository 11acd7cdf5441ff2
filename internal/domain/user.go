package domain

import "time"

// UserRole enumerates the access roles known to the system.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleEditor UserRole = "EDITOR"
	RoleUser   UserRole = "USER"
)

// User is an account that can log in and act on tickets. Warehouse grants
// come from the user_warehouses join table and define the user's scope.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         UserRole
	WarehouseIDs []int64
	CreatedAt    time.Time
}

// IsAdmin reports whether the user bypasses warehouse scoping.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
