package repository

import (
	"testing"

	"catalog-service/internal/model"
)

func TestUserFindByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	hash, err := model.HashPassword("supersecret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := model.User{
		Email:        "alice@example.com",
		PasswordHash: hash,
		FirstName:    "Alice",
		LastName:     "Smith",
		IsActive:     true,
	}
	if err := repo.Create(&user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, found.ID)
	}

	if _, err := repo.FindByEmail("unknown@example.com"); err == nil {
		t.Error("expected an error for an unknown email")
	}
}

func TestEmailExistsIncludingDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	hash, err := model.HashPassword("supersecret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := model.User{
		Email:        "bob@example.com",
		PasswordHash: hash,
		FirstName:    "Bob",
		LastName:     "Jones",
		IsActive:     true,
	}
	if err := repo.Create(&user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err := repo.EmailExistsIncludingDeleted("bob@example.com")
	if err != nil {
		t.Fatalf("EmailExistsIncludingDeleted failed: %v", err)
	}
	if !exists {
		t.Error("expected email to exist")
	}

	// A soft-deleted account still reserves its address.
	if err := db.Delete(&user).Error; err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	exists, err = repo.EmailExistsIncludingDeleted("bob@example.com")
	if err != nil {
		t.Fatalf("EmailExistsIncludingDeleted failed: %v", err)
	}
	if !exists {
		t.Error("expected soft-deleted account to reserve the email")
	}
}
