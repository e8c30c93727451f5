package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/model"
)

// AuthorRepository persists authors.
type AuthorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

func (r *AuthorRepository) Create(author *model.Author) error {
	return r.db.Create(author).Error
}

// List returns non-deleted authors ordered by last name. search, when
// non-empty, is matched case-insensitively against name and last name.
func (r *AuthorRepository) List(search string) ([]model.Author, error) {
	q := r.db.Model(&model.Author{})
	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(last_name) LIKE ?", term, term)
	}

	var authors []model.Author
	err := q.Order("last_name ASC").Find(&authors).Error
	return authors, err
}

func (r *AuthorRepository) FindByID(id uuid.UUID) (*model.Author, error) {
	var author model.Author
	if err := r.db.First(&author, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByIDWithBooks loads the author together with their non-deleted books.
func (r *AuthorRepository) FindByIDWithBooks(id uuid.UUID) (*model.Author, error) {
	var author model.Author
	if err := r.db.Preload("Books").First(&author, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *AuthorRepository) Update(author *model.Author) error {
	return r.db.Save(author).Error
}

func (r *AuthorRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Delete(&model.Author{}, "id = ?", id).Error
}
