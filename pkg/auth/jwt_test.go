package auth_test

import (
	"testing"
	"time"

	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/auth"
)

const testSecret = "test-secret"

func TestMagicLinkTokenRoundTrip(t *testing.T) {
	token, err := auth.NewMagicLinkToken(42, "alice@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewMagicLinkToken: %v", err)
	}

	claims, err := auth.Parse(token, testSecret)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if claims.Sub != 42 {
		t.Errorf("expected sub 42, got %d", claims.Sub)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", claims.Email)
	}
	if claims.Scope != auth.ScopeMagicLink {
		t.Errorf("expected scope %s, got %s", auth.ScopeMagicLink, claims.Scope)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := auth.NewMagicLinkToken(7, "bob@example.com", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("NewMagicLinkToken: %v", err)
	}

	if _, err := auth.Parse(token, testSecret); err == nil {
		t.Error("expected error parsing expired token, got nil")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := auth.NewSessionToken(7, "bob@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	if _, err := auth.Parse(token, "other-secret"); err == nil {
		t.Error("expected error parsing token with wrong secret, got nil")
	}
}

func TestSessionTokenScope(t *testing.T) {
	token, err := auth.NewSessionToken(9, "carol@example.com", testSecret, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	claims, err := auth.Parse(token, testSecret)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Scope != auth.ScopeSession {
		t.Errorf("expected scope %s, got %s", auth.ScopeSession, claims.Scope)
	}
}
