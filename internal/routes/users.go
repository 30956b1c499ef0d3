package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medilink/medilink/internal/identity"
	"github.com/medilink/medilink/internal/middleware"
)

// RegisterUserRoutes wires the admin-only user listing. Responses carry
// user summaries only; password hashes never leave the store layer.
func RegisterUserRoutes(r fiber.Router, repo identity.Repository, sessionAuth fiber.Handler) {
	r.Get("/users", sessionAuth, middleware.RequireRole(identity.RoleAdmin), func(c *fiber.Ctx) error {
		users, err := repo.List(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "internal error")
		}
		summaries := make([]identity.Summary, 0, len(users))
		for _, user := range users {
			summaries = append(summaries, user.Summary())
		}
		return c.Status(http.StatusOK).JSON(summaries)
	})
}
