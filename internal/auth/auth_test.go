package auth

import (
	"errors"
	"testing"
	"time"

	"mutual-aid-go/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig() models.AuthConfig {
	return models.AuthConfig{
		JWTSecret:    "test-secret",
		AccessExpiry: time.Hour,
		BcryptCost:   bcrypt.MinCost,
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPassword(hash, "correct-horse-battery") {
		t.Errorf("Expected password to verify against its hash")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Errorf("Expected wrong password to fail verification")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short", bcrypt.MinCost); err == nil {
		t.Errorf("Expected error for short password")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testAuthConfig()
	user := &models.User{Id: "user-1", Role: models.RoleAdmin}

	token, err := GenerateToken(cfg, user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserId != "user-1" {
		t.Errorf("Expected user_id user-1, got %s", claims.UserId)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("Expected admin role, got %s", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	cfg := testAuthConfig()
	token, err := GenerateToken(cfg, &models.User{Id: "user-1", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	other := cfg
	other.JWTSecret = "different-secret"
	if _, err := ValidateToken(other, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token error, got: %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessExpiry = -time.Minute

	token, err := GenerateToken(cfg, &models.User{Id: "user-1", Role: models.RoleMember})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ValidateToken(cfg, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected invalid token error for expired token, got: %v", err)
	}
}
