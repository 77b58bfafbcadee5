package auth

import (
	"errors"
	"testing"
)

const testSecret = "test-secret-at-least-32-characters-long"

func tokenUser() *User {
	return &User{
		ID:    "usr-1a2b3c4d",
		Email: "alice@fleet.example",
		Role:  RoleOperator,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(tokenUser(), testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.Subject != "usr-1a2b3c4d" {
		t.Errorf("Subject = %q, want usr-1a2b3c4d", claims.Subject)
	}
	if claims.Role != RoleOperator {
		t.Errorf("Role = %q, want %q", claims.Role, RoleOperator)
	}
	if claims.Email != "alice@fleet.example" {
		t.Errorf("Email = %q, want alice@fleet.example", claims.Email)
	}
	if claims.ExpiresAt == nil {
		t.Error("ExpiresAt should be set")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(tokenUser(), testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken(token, "a-completely-different-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenRejectsUnsignedAlgorithm(t *testing.T) {
	// Token signed with alg=none, forged header/payload.
	forged := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJzdWIiOiJ1c3ItMWEyYjNjNGQiLCJyb2xlIjoiYWRtaW4ifQ."

	if _, err := ParseToken(forged, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestGenerateTokenDefaultTTL(t *testing.T) {
	token, err := GenerateToken(tokenUser(), testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl.Minutes() != 60 {
		t.Errorf("default TTL = %v, want 60m", ttl)
	}
}
