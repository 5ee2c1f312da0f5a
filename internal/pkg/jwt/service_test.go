package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewHMACService("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	tok, err := svc.GenerateAccessToken(userID, "user@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Fatal("user id mismatch")
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("token type = %s", claims.TokenType)
	}
	if svc.IsResumeToken(claims) {
		t.Fatal("access token misidentified as resume token")
	}
}

func TestResumeTokenRoundTrip(t *testing.T) {
	svc := NewHMACService("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	tok, err := svc.GenerateResumeToken(userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !svc.IsResumeToken(claims) {
		t.Fatal("expected resume token")
	}
	if claims.UserID != userID {
		t.Fatal("user id mismatch")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewHMACService("secret-a", time.Minute, time.Minute)
	verifier := NewHMACService("secret-b", time.Minute, time.Minute)

	tok, err := issuer.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewHMACService("test-secret", time.Minute, time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	tok, err := svc.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewHMACService("test-secret", time.Minute, time.Minute)
	if _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
