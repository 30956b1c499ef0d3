package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/medilink/medilink/internal/auth"
	"github.com/medilink/medilink/internal/identity"
)

func newSessionApp(t *testing.T, tokens *auth.TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/me", SessionAuth(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals(LocalUserID)})
	})
	app.Get("/admin", SessionAuth(tokens), RequireRole(identity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestSessionAuthMissingToken(t *testing.T) {
	app := newSessionApp(t, auth.NewTokenManager("secret"))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSessionAuthValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("secret")
	app := newSessionApp(t, tokens)

	token, err := tokens.IssueSession("user-1", identity.RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	tokens := auth.NewTokenManager("secret")
	app := newSessionApp(t, tokens)

	patient, err := tokens.IssueSession("user-1", identity.RolePatient)
	if err != nil {
		t.Fatalf("issue patient: %v", err)
	}
	admin, err := tokens.IssueSession("user-2", identity.RoleAdmin)
	if err != nil {
		t.Fatalf("issue admin: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+patient)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for patient, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestSessionAuthRejectsForgedToken(t *testing.T) {
	app := newSessionApp(t, auth.NewTokenManager("secret"))

	forged, err := auth.NewTokenManager("other-secret").IssueSession("user-1", identity.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+forged)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", resp.StatusCode)
	}
}
