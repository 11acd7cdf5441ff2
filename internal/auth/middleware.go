package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/repository"
	"github.com/spec-kit/warehouse-ticketing/internal/scope"
	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

const principalKey = "auth_principal"

// SessionPrincipal pairs the loaded account with its request scope
// principal. Immutable for the request's duration.
type SessionPrincipal struct {
	User      *domain.User
	Principal scope.Principal
}

// AuthMiddleware validates bearer tokens and loads principals with their
// warehouse grants.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. The token may
// arrive as a bearer header or, for websocket upgrades where headers are
// awkward for browser clients, as a "token" query parameter.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		tokenStr = c.Query("token")
	}
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing authorization")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &SessionPrincipal{
		User: user,
		Principal: scope.Principal{
			UserID:       user.ID,
			WarehouseIDs: user.WarehouseIDs,
			IsAdmin:      user.IsAdmin(),
		},
	})
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*SessionPrincipal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*SessionPrincipal)
	return principal, ok
}
