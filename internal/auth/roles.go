package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

// RequireAuthenticated ensures the caller carries a valid principal.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the principal has the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !session.Principal.IsAdmin {
			return apperrors.NewAccessDenied("admin role required")
		}
		return c.Next()
	}
}
