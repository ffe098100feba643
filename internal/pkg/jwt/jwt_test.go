package jwt

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user-1", "jurgern", "employee", testSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Username != "jurgern" {
		t.Errorf("Username = %q, want %q", claims.Username, "jurgern")
	}
	if claims.Role != "employee" {
		t.Errorf("Role = %q, want %q", claims.Role, "employee")
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-1")
	}
}

func TestTokenExpiryIs24Hours(t *testing.T) {
	before := time.Now()
	token, err := GenerateToken("user-1", "admin", "admin", testSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	after := time.Now()

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	expiry := claims.ExpiresAt.Time
	if expiry.Before(before.Add(TokenTTL).Add(-2*time.Second)) || expiry.After(after.Add(TokenTTL).Add(2*time.Second)) {
		t.Errorf("expiry %v is not ~%v from issue time", expiry, TokenTTL)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "admin", "admin", testSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken(token, "another-secret"); err != ErrTokenInvalid {
		t.Errorf("ValidateToken with wrong secret = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", testSecret); err != ErrTokenInvalid {
		t.Errorf("ValidateToken(garbage) = %v, want ErrTokenInvalid", err)
	}
}
