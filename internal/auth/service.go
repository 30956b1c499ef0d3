package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medilink/medilink/internal/identity"
	"github.com/medilink/medilink/internal/notification"
)

const (
	loginOTPSubject = "Your Login OTP"
	resetOTPSubject = "Your Password Reset OTP"
)

// federatedDOB is the placeholder date of birth for accounts provisioned
// through the identity bridge.
var federatedDOB = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Service orchestrates the authentication flows: registration, two-phase
// OTP login, forgot/reset password and federated provisioning.
type Service struct {
	repo       identity.Repository
	tokens     *TokenManager
	challenges *ChallengeCodec
	notifier   notification.Notifier
	marker     *ChallengeMarker
}

// NewService wires the orchestrator. The marker may be nil, in which case
// challenges stay replayable for their validity window.
func NewService(repo identity.Repository, tokens *TokenManager, challenges *ChallengeCodec, notifier notification.Notifier, marker *ChallengeMarker) *Service {
	return &Service{repo: repo, tokens: tokens, challenges: challenges, notifier: notifier, marker: marker}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string
	Gender   string
	DOB      string
	Email    string
	Password string
	Role     string
}

// Register creates an account and logs the user straight in: registration
// is the one flow that issues a session token without a second factor.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, identity.User, error) {
	role, err := identity.ParseRole(in.Role)
	if err != nil {
		return "", identity.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	dob, err := time.Parse(identity.DOBLayout, in.DOB)
	if err != nil {
		return "", identity.User{}, fmt.Errorf("%w: dob must be %s", ErrInvalidInput, identity.DOBLayout)
	}
	if in.Email == "" || in.Password == "" {
		return "", identity.User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", identity.User{}, err
	}

	user := identity.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Gender:       in.Gender,
		DOB:          dob,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			return "", identity.User{}, ErrDuplicateAccount
		}
		return "", identity.User{}, err
	}

	token, err := s.tokens.IssueSession(user.ID, user.Role)
	if err != nil {
		return "", identity.User{}, err
	}
	return token, user, nil
}

// Login checks credentials and issues a login-purpose OTP challenge. It
// never grants a session directly; the caller must come back through
// VerifyLoginOTP. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueChallenge(ctx, user, PurposeLogin, loginOTPSubject)
}

// VerifyLoginOTP completes the second phase of login and mints the session.
func (s *Service) VerifyLoginOTP(ctx context.Context, challengeToken, code string) (string, identity.User, error) {
	user, err := s.redeemChallenge(ctx, challengeToken, code, PurposeLogin)
	if err != nil {
		return "", identity.User{}, err
	}
	token, err := s.tokens.IssueSession(user.ID, user.Role)
	if err != nil {
		return "", identity.User{}, err
	}
	return token, user, nil
}

// ForgotPassword issues a reset-purpose OTP challenge. Unlike Login, an
// unknown email is reported explicitly.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrUserNotFound
	}
	return s.issueChallenge(ctx, user, PurposeReset, resetOTPSubject)
}

// ResetPassword redeems a reset challenge and stores the new password hash.
// No session is issued; the caller must log in with the new password.
func (s *Service) ResetPassword(ctx context.Context, challengeToken, code, newPassword string) error {
	user, err := s.redeemChallenge(ctx, challengeToken, code, PurposeReset)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, hash)
}

// ProvisionFederated exchanges a verified third-party profile for a local
// account, creating one on first login. Provisioning is idempotent on
// email: repeated federated logins never create duplicates or re-mail the
// temporary password.
func (s *Service) ProvisionFederated(ctx context.Context, name, email string) (string, identity.User, error) {
	if email == "" {
		return "", identity.User{}, ErrProvisioning
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, identity.ErrNotFound) {
		user, err = s.createFederated(ctx, name, email)
	}
	if err != nil {
		if errors.Is(err, ErrNotificationFailed) {
			return "", identity.User{}, err
		}
		return "", identity.User{}, ErrProvisioning
	}

	token, err := s.tokens.IssueSession(user.ID, user.Role)
	if err != nil {
		return "", identity.User{}, ErrProvisioning
	}
	return token, user, nil
}

// createFederated builds the just-in-time account: a random temporary
// password is hashed into the record and mailed to the user exactly once.
func (s *Service) createFederated(ctx context.Context, name, email string) (identity.User, error) {
	temp, err := generateTempPassword()
	if err != nil {
		return identity.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return identity.User{}, err
	}

	user := identity.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Gender:       "other",
		DOB:          federatedDOB,
		PasswordHash: hash,
		Role:         identity.RolePatient,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return identity.User{}, err
	}

	body := fmt.Sprintf("Hi %s,\n\nWelcome! Your temporary password is: %s\n\nYou can use this password to log in directly and then set a new password from your profile.", user.Name, temp)
	msg := notification.Message{To: user.Email, Subject: "Welcome to MediLink! Temporary Password", Body: body}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return identity.User{}, fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}
	return user, nil
}

func (s *Service) issueChallenge(ctx context.Context, user identity.User, purpose Purpose, subject string) (string, error) {
	token, code, err := s.challenges.Issue(user.ID, purpose)
	if err != nil {
		return "", err
	}
	msg := notification.Message{To: user.Email, Subject: subject, Body: "Your OTP is: " + code}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}
	return token, nil
}

// redeemChallenge runs the shared validation chain: signature/expiry,
// purpose, exact code match, single-use marking, then the user load.
func (s *Service) redeemChallenge(ctx context.Context, challengeToken, code string, purpose Purpose) (identity.User, error) {
	ch, err := s.challenges.Verify(challengeToken)
	if err != nil {
		return identity.User{}, err
	}
	if ch.Purpose != purpose {
		return identity.User{}, ErrWrongPurpose
	}
	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		return identity.User{}, ErrOTPMismatch
	}
	if !s.marker.MarkUsed(ctx, ch.ID) {
		return identity.User{}, ErrInvalidChallenge
	}
	user, err := s.repo.FindByID(ctx, ch.UserID)
	if err != nil {
		return identity.User{}, ErrUserNotFound
	}
	return user, nil
}

// generateTempPassword returns a 16 hex character secret.
func generateTempPassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate temp password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
