package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestJWTManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        expiry,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "records-api-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := newTestJWTManager(time.Hour)

	token, jti, err := m.GenerateAccessToken(42, "alice@example.com", "member", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if jti == "" {
		t.Error("expected a non-empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want JTI %q", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := newTestJWTManager(time.Hour)

	token, _, err := m.GenerateRefreshToken(7, "bob@example.com", "member", 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := newTestJWTManager(time.Hour)
	other := NewJWTManager(JWTConfig{
		Secret: "a-different-secret",
		Expiry: time.Hour,
		Issuer: "records-api-test",
	})

	token, _, err := m.GenerateAccessToken(1, "x@example.com", "member", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken with wrong secret: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := newTestJWTManager(-time.Minute)

	token, _, err := m.GenerateAccessToken(1, "x@example.com", "member", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken with expired token: got %v, want ErrExpiredToken", err)
	}
}

func TestRefreshAccessTokenRejectsAccessToken(t *testing.T) {
	m := newTestJWTManager(time.Hour)

	accessToken, _, err := m.GenerateAccessToken(1, "x@example.com", "member", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, _, err := m.RefreshAccessToken(accessToken, 0); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("RefreshAccessToken with access token: got %v, want ErrInvalidToken", err)
	}
}

func TestGetTokenExpiry(t *testing.T) {
	m := newTestJWTManager(time.Hour)

	token, _, err := m.GenerateAccessToken(1, "x@example.com", "member", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	exp, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry failed: %v", err)
	}

	until := time.Until(exp)
	if until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expiry %v is not about an hour away", until)
	}
}
