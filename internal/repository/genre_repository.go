package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/model"
)

// GenreRepository persists genres.
type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) Create(genre *model.Genre) error {
	return r.db.Create(genre).Error
}

// List returns non-deleted genres ordered by name. search, when non-empty,
// is matched case-insensitively against the name.
func (r *GenreRepository) List(search string) ([]model.Genre, error) {
	q := r.db.Model(&model.Genre{})
	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ?", term)
	}

	var genres []model.Genre
	err := q.Order("name ASC").Find(&genres).Error
	return genres, err
}

func (r *GenreRepository) FindByID(id uuid.UUID) (*model.Genre, error) {
	var genre model.Genre
	if err := r.db.First(&genre, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// FindByIDWithBooks loads the genre together with its non-deleted books.
func (r *GenreRepository) FindByIDWithBooks(id uuid.UUID) (*model.Genre, error) {
	var genre model.Genre
	if err := r.db.Preload("Books").First(&genre, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *GenreRepository) Update(genre *model.Genre) error {
	return r.db.Save(genre).Error
}

func (r *GenreRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Delete(&model.Genre{}, "id = ?", id).Error
}
