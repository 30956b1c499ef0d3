package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medilink/medilink/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/verify-login-otp", h.VerifyLoginOTP)
	group.Post("/forgot-password", h.ForgotPassword)
	group.Post("/reset-password", h.ResetPassword)
	group.Get("/google", h.GoogleLogin)
	group.Get("/google/callback", h.GoogleCallback)
}
