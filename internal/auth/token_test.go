package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/medilink/medilink/internal/identity"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewTokenManager("secret")

	token, err := m.IssueSession("user-1", identity.RoleDoctor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	session, err := m.VerifySession(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if session.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", session.UserID)
	}
	if session.Role != identity.RoleDoctor {
		t.Fatalf("expected doctor role, got %s", session.Role)
	}
}

func TestSessionWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").IssueSession("user-1", identity.RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenManager("secret-b").VerifySession(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionTampered(t *testing.T) {
	m := NewTokenManager("secret")
	token, err := m.IssueSession("user-1", identity.RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact JWT, got %q", token)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := m.VerifySession(tampered); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	if _, err := m.VerifySession("not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}
