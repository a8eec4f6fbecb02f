package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenManagerIssueAndVerify(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, err := manager.Issue("account-1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected a signed token")
	}

	claims, err := manager.Verify(token.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "account-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenManagerRejectsEmptyAccount(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	if _, err := manager.Issue("", "alice"); err == nil {
		t.Fatal("expected error for empty account id")
	}
}

func TestTokenManagerRejectsForgedToken(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := other.Issue("account-1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(token.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestTokenManagerRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager := NewTokenManager("test-secret", time.Hour)
	manager.NowFunc = func() time.Time { return issuedAt }

	token, err := manager.Issue("account-1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.NowFunc = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := manager.Verify(token.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}
