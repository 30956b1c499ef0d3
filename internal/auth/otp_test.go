package auth

import (
	"errors"
	"testing"
	"time"
)

func TestChallengeRoundTrip(t *testing.T) {
	codec := NewChallengeCodec("secret", 0)

	token, code, err := codec.Issue("user-1", PurposeLogin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	if code[0] == '0' {
		t.Fatalf("code must be in [100000,999999], got %q", code)
	}

	ch, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ch.UserID != "user-1" || ch.Code != code || ch.Purpose != PurposeLogin {
		t.Fatalf("unexpected challenge: %+v", ch)
	}
	if ch.ID == "" {
		t.Fatalf("expected a challenge id")
	}
}

func TestChallengeExpired(t *testing.T) {
	codec := NewChallengeCodec("secret", -time.Minute)

	token, _, err := codec.Issue("user-1", PurposeLogin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidChallenge) {
		t.Fatalf("expected ErrInvalidChallenge, got %v", err)
	}
}

func TestChallengeTamperAndExpiryIndistinguishable(t *testing.T) {
	good := NewChallengeCodec("secret", 0)
	expired := NewChallengeCodec("secret", -time.Minute)
	foreign := NewChallengeCodec("other-secret", 0)

	expiredToken, _, err := expired.Issue("user-1", PurposeReset)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	foreignToken, _, err := foreign.Issue("user-1", PurposeReset)
	if err != nil {
		t.Fatalf("issue foreign: %v", err)
	}

	for _, token := range []string{expiredToken, foreignToken, "garbage"} {
		if _, err := good.Verify(token); !errors.Is(err, ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge for %q, got %v", token, err)
		}
	}
}
