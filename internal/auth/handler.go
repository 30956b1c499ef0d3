package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/medilink/medilink/internal/identity"
)

const oauthStateCookie = "oauth_state"

// Handler exposes the authentication endpoints.
type Handler struct {
	svc          *Service
	google       *GoogleBridge
	clientOrigin string
}

// NewHandler wires the auth handler. google may be nil when the federated
// bridge is not configured.
func NewHandler(svc *Service, google *GoogleBridge, clientOrigin string) *Handler {
	return &Handler{svc: svc, google: google, clientOrigin: clientOrigin}
}

type registerRequest struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	DOB      string `json:"dob"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	Token string           `json:"token"`
	User  identity.Summary `json:"user"`
}

// Register creates an account and logs the user in directly.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, user, err := h.svc.Register(c.UserContext(), RegisterInput{
		Name:     req.Name,
		Gender:   req.Gender,
		DOB:      req.DOB,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(sessionResponse{Token: token, User: user.Summary()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and mails an OTP; the session comes later from
// VerifyLoginOTP.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	challenge, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"otpSent": true, "otpToken": challenge})
}

type verifyOTPRequest struct {
	OTPToken string `json:"otpToken"`
	OTP      string `json:"otp"`
}

// VerifyLoginOTP completes the two-phase login.
func (h *Handler) VerifyLoginOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, user, err := h.svc.VerifyLoginOTP(c.UserContext(), req.OTPToken, req.OTP)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(sessionResponse{Token: token, User: user.Summary()})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword mails a reset OTP for an existing account.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	challenge, err := h.svc.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"msg": "OTP sent to your email", "otpToken": challenge})
}

type resetPasswordRequest struct {
	OTPToken    string `json:"otpToken"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword redeems a reset challenge and stores the new password.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ResetPassword(c.UserContext(), req.OTPToken, req.OTP, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"msg": "password has been reset successfully"})
}

// GoogleLogin redirects the browser to the provider consent page.
func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	if h.google == nil {
		return fiber.NewError(http.StatusNotFound, "google login is not configured")
	}
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.google.LoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles the provider redirect: it validates state,
// exchanges the code and sends the browser back to the client with a
// session token in the fragment. Provisioning failures redirect with a
// generic error so nothing provider-side leaks to the user.
func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	if h.google == nil {
		return fiber.NewError(http.StatusNotFound, "google login is not configured")
	}
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return fiber.NewError(http.StatusBadRequest, "invalid oauth state")
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return fiber.NewError(http.StatusBadRequest, "missing authorization code")
	}

	token, _, err := h.google.Authenticate(c.UserContext(), code)
	if err != nil {
		return c.Redirect(h.clientOrigin+"/login?error=provisioning_failed", http.StatusTemporaryRedirect)
	}
	return c.Redirect(h.clientOrigin+"/oauth/callback#token="+token, http.StatusTemporaryRedirect)
}

// httpError maps domain errors onto HTTP statuses. Unexpected errors stay
// opaque 500s so persistence and signing internals never leak.
func httpError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidChallenge),
		errors.Is(err, ErrWrongPurpose),
		errors.Is(err, ErrOTPMismatch):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidSession):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotificationFailed):
		return fiber.NewError(http.StatusBadGateway, ErrNotificationFailed.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}
