package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/medilink/medilink/internal/config"
	"github.com/medilink/medilink/internal/logging"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{
		AppName:      "MediLink",
		AppEnv:       "development",
		JWTSecret:    "test-secret",
		ClientOrigin: "http://localhost:3000",
	}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, bearer string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, payload
}

func register(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()
	body := `{"name":"Test","gender":"other","dob":"1990-01-01","email":"` + email + `","password":"Secret123","role":"` + role + `"}`
	status, payload := doJSON(t, app, fiber.MethodPost, "/api/auth/register", body, "")
	if status != fiber.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, status, payload)
	}
	var decoded struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if decoded.Token == "" {
		t.Fatalf("expected a token for %s", email)
	}
	return decoded.Token
}

func TestHealthz(t *testing.T) {
	app := setupTestApp(t)
	status, _ := doJSON(t, app, fiber.MethodGet, "/healthz", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
}

func TestLoginRouteIssuesChallenge(t *testing.T) {
	app := setupTestApp(t)
	register(t, app, "ann@x.com", "patient")

	status, payload := doJSON(t, app, fiber.MethodPost, "/api/auth/login", `{"email":"ann@x.com","password":"Secret123"}`, "")
	if status != fiber.StatusOK {
		t.Fatalf("login: status %d body %s", status, payload)
	}
	var decoded struct {
		OTPSent  bool   `json:"otpSent"`
		OTPToken string `json:"otpToken"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if !decoded.OTPSent || decoded.OTPToken == "" {
		t.Fatalf("expected otpSent with a challenge token, got %s", payload)
	}
}

func TestUsersListingRequiresAdmin(t *testing.T) {
	app := setupTestApp(t)
	patientToken := register(t, app, "pat@x.com", "patient")
	adminToken := register(t, app, "root@x.com", "admin")

	if status, _ := doJSON(t, app, fiber.MethodGet, "/api/users", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if status, _ := doJSON(t, app, fiber.MethodGet, "/api/users", "", patientToken); status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for patient, got %d", status)
	}

	status, payload := doJSON(t, app, fiber.MethodGet, "/api/users", "", adminToken)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", status, payload)
	}
	var users []map[string]any
	if err := json.Unmarshal(payload, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, user := range users {
		if _, ok := user["password"]; ok {
			t.Fatalf("listing must not expose password fields: %v", user)
		}
		if _, ok := user["PasswordHash"]; ok {
			t.Fatalf("listing must not expose password fields: %v", user)
		}
	}
}
