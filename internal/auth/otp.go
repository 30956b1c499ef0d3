package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChallengeTTL is how long an issued OTP challenge stays verifiable.
const ChallengeTTL = 10 * time.Minute

// Purpose tags a challenge with the single flow it may satisfy.
type Purpose string

const (
	PurposeLogin Purpose = "login"
	PurposeReset Purpose = "reset"
)

// Challenge is the decoded content of a verified challenge token.
type Challenge struct {
	ID      string
	UserID  string
	Code    string
	Purpose Purpose
}

type challengeClaims struct {
	OTP     string `json:"otp"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// ChallengeCodec issues and verifies stateless OTP challenges. The code and
// its metadata are embedded in a signed token handed back to the client, so
// any replica can verify the second phase without shared storage.
type ChallengeCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewChallengeCodec builds a codec. A non-positive ttl falls back to
// ChallengeTTL.
func NewChallengeCodec(secret string, ttl time.Duration) *ChallengeCodec {
	if ttl == 0 {
		ttl = ChallengeTTL
	}
	return &ChallengeCodec{secret: []byte(secret), ttl: ttl}
}

// Issue generates a 6-digit code and wraps it into a signed challenge
// token. The plaintext code is returned for out-of-band delivery and must
// never reach the HTTP caller directly.
func (c *ChallengeCodec) Issue(userID string, purpose Purpose) (token, code string, err error) {
	code, err = generateCode()
	if err != nil {
		return "", "", err
	}
	now := time.Now()
	claims := challengeClaims{
		OTP:     code,
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", err
	}
	return token, code, nil
}

// Verify checks signature and expiry. Tampering and expiry are deliberately
// indistinguishable: both return ErrInvalidChallenge.
func (c *ChallengeCodec) Verify(token string) (Challenge, error) {
	var claims challengeClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Challenge{}, ErrInvalidChallenge
	}
	return Challenge{
		ID:      claims.ID,
		UserID:  claims.Subject,
		Code:    claims.OTP,
		Purpose: Purpose(claims.Purpose),
	}, nil
}

// generateCode draws a decimal code in [100000, 999999] from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
