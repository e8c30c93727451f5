package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/model"
)

// UserRepository persists accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByEmail returns a non-deleted user by email.
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExistsIncludingDeleted reports whether any user, soft-deleted rows
// included, holds the email. Registration must refuse emails of removed
// accounts too.
func (r *UserRepository) EmailExistsIncludingDeleted(email string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
