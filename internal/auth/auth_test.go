package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	token, err := mgr.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	userID, err := mgr.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if userID != 42 {
		t.Fatalf("user id = %d, want 42", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).IssueToken(7)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := NewManager("secret-b", time.Hour).VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)
	token, err := mgr.IssueToken(7)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := mgr.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	if _, err := mgr.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}
