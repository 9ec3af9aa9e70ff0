package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("user-1", secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	userID, err := GetUserIDFromToken(token, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("got userID %q, want %q", userID, "user-1")
	}
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", []byte("right"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := GetUserIDFromToken(token, []byte("wrong")); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("user-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := GetUserIDFromToken(token, secret); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	if _, err := GetUserIDFromToken("not-a-token", []byte("secret")); err == nil {
		t.Error("expected error for malformed token")
	}
}
