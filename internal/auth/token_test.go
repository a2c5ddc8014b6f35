package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-client/internal/chat"
)

func TestParseIdentityRoundTrip(t *testing.T) {
	token, err := GenerateToken([]byte("secret"), "u1", "alice", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	user, err := ParseIdentity(token)
	if err != nil {
		t.Fatalf("parse identity: %v", err)
	}
	if user.ID != "u1" || user.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", user)
	}
}

func TestParseIdentityFallsBackToUsername(t *testing.T) {
	token, err := GenerateToken([]byte("secret"), "u1", "alice", "", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	user, err := ParseIdentity(token)
	if err != nil {
		t.Fatalf("parse identity: %v", err)
	}
	if user.Email != "alice" {
		t.Fatalf("expected username fallback, got %q", user.Email)
	}
}

func TestParseIdentityRejectsBadTokens(t *testing.T) {
	if _, err := ParseIdentity(""); !errors.Is(err, chat.ErrNoUser) {
		t.Fatalf("expected ErrNoUser for empty token, got %v", err)
	}
	if _, err := ParseIdentity("not-a-token"); err == nil {
		t.Fatal("expected malformed token to fail")
	}

	// A valid token without a user id is useless to the client.
	token, err := GenerateToken([]byte("secret"), "", "alice", "", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ParseIdentity(token); err == nil {
		t.Fatal("expected token without user id to fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal plaintext")
	}
	if err := CheckPassword(hash, "s3cret"); err != nil {
		t.Fatalf("expected matching password, got %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch to fail")
	}
}
