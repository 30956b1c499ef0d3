package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medilink/medilink/internal/identity"
)

const sessionTTL = 7 * 24 * time.Hour

// Session is the identity bound into a verified session token.
type Session struct {
	UserID string
	Role   identity.Role
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies the long-lived bearer tokens presented on
// authenticated requests. Tokens are stateless; there is no server-side
// revocation list.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a session token manager with the default validity.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: sessionTTL}
}

// IssueSession signs a bearer token carrying the user identifier and role.
func (m *TokenManager) IssueSession(userID string, role identity.Role) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifySession validates the token and returns the bound identity. Any
// failure collapses into ErrInvalidSession.
func (m *TokenManager) VerifySession(token string) (Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalidSession
	}
	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return Session{}, ErrInvalidSession
	}
	return Session{UserID: claims.Subject, Role: role}, nil
}
