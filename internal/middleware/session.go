package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medilink/medilink/internal/auth"
	"github.com/medilink/medilink/internal/identity"
)

const (
	// LocalUserID and LocalRole are the context keys set by SessionAuth.
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// SessionAuth validates the bearer session token and loads the bound
// identity into request locals. Tokens are self-contained, so no store
// lookup happens here.
func SessionAuth(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		session, err := tokens.VerifySession(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, auth.ErrInvalidSession.Error())
		}
		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalRole, session.Role)
		return c.Next()
	}
}

// RequireRole gates a route on the session role. Must run after SessionAuth.
func RequireRole(role identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, _ := c.Locals(LocalRole).(identity.Role)
		if got != role {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
