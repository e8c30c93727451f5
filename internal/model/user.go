package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PasswordHash is a bcrypt hash of a password. Values are only ever produced
// by HashPassword, so a plaintext password cannot be stored by accident and a
// stored hash is never hashed twice.
type PasswordHash string

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plaintext string) (PasswordHash, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return PasswordHash(hash), nil
}

// Verify reports whether the plaintext password matches the hash.
func (h PasswordHash) Verify(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(h), []byte(plaintext)) == nil
}

// User represents an account that can authenticate against the catalog.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash PasswordHash   `json:"-" gorm:"type:varchar(255);not null"`
	FirstName    string         `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName     string         `json:"lastName" gorm:"type:varchar(100);not null"`
	Role         string         `json:"role" gorm:"type:varchar(20);not null"`
	IsActive     bool           `json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
