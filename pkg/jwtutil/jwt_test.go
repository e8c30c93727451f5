package jwtutil

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"catalog-service/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "unit-test-key", ExpirationHours: 1})

	userID := uuid.New()
	token, err := GenerateToken(userID, "alice@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Errorf("expected user ID %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("unexpected email %s", claims.Email)
	}
	if claims.Role != "user" {
		t.Errorf("unexpected role %s", claims.Role)
	}
}

func TestValidateTamperedToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "unit-test-key", ExpirationHours: 1})

	token, err := GenerateToken(uuid.New(), "bob@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".invalidsignature"
	if _, err := ValidateToken(tampered); err == nil {
		t.Error("expected tampered token to fail validation")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "unit-test-key", ExpirationHours: -1})
	token, err := GenerateToken(uuid.New(), "carol@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	Initialize(&config.JWTConfig{SigningKey: "unit-test-key", ExpirationHours: 1})

	if _, err := ValidateToken(token); err == nil {
		t.Error("expected expired token to fail validation")
	}
}

func TestValidateWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "first-key", ExpirationHours: 1})
	token, err := GenerateToken(uuid.New(), "dave@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	Initialize(&config.JWTConfig{SigningKey: "second-key", ExpirationHours: 1})
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected token signed with another key to fail validation")
	}
}
