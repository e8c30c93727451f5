package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/model"
)

// PublisherRepository persists publishers.
type PublisherRepository struct {
	db *gorm.DB
}

func NewPublisherRepository(db *gorm.DB) *PublisherRepository {
	return &PublisherRepository{db: db}
}

func (r *PublisherRepository) Create(publisher *model.Publisher) error {
	return r.db.Create(publisher).Error
}

// List returns non-deleted publishers ordered by name. search, when
// non-empty, is matched case-insensitively against the name.
func (r *PublisherRepository) List(search string) ([]model.Publisher, error) {
	q := r.db.Model(&model.Publisher{})
	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ?", term)
	}

	var publishers []model.Publisher
	err := q.Order("name ASC").Find(&publishers).Error
	return publishers, err
}

func (r *PublisherRepository) FindByID(id uuid.UUID) (*model.Publisher, error) {
	var publisher model.Publisher
	if err := r.db.First(&publisher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &publisher, nil
}

// FindByIDWithBooks loads the publisher together with its non-deleted books.
func (r *PublisherRepository) FindByIDWithBooks(id uuid.UUID) (*model.Publisher, error) {
	var publisher model.Publisher
	if err := r.db.Preload("Books").First(&publisher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &publisher, nil
}

func (r *PublisherRepository) Update(publisher *model.Publisher) error {
	return r.db.Save(publisher).Error
}

func (r *PublisherRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Delete(&model.Publisher{}, "id = ?", id).Error
}
