package auth

import (
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not be the plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(42, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	principal, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if principal.UserID != 42 || principal.Username != "alice" {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestTokenRejectsTamperingAndExpiry(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(42, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Validate(token + "x"); err == nil {
		t.Fatalf("expected tampered token to fail")
	}
	if _, err := m.Validate("garbage"); err == nil {
		t.Fatalf("expected garbage token to fail")
	}

	// A token signed with a different secret is rejected.
	other := NewTokenManager("other-secret", time.Hour)
	otherToken, err := other.Issue(42, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Validate(otherToken); err == nil {
		t.Fatalf("expected foreign-secret token to fail")
	}

	// An expired token is rejected.
	expired := NewTokenManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(42, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Validate(expiredToken); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}
