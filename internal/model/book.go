package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book represents a catalog entry. Every book belongs to exactly one author,
// publisher and genre; the relation pointers are populated only when the
// query preloaded them.
type Book struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title           string         `json:"title" gorm:"type:varchar(255);not null;index"`
	Description     string         `json:"description,omitempty" gorm:"type:text"`
	ISBN            *string        `json:"isbn,omitempty" gorm:"type:varchar(20);uniqueIndex"`
	PublicationYear *int           `json:"publicationYear,omitempty"`
	Price           float64        `json:"price" gorm:"not null"`
	StockQuantity   int            `json:"stockQuantity" gorm:"default:0"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	IsAvailable     bool           `json:"isAvailable"`
	AuthorID        uuid.UUID      `json:"authorId" gorm:"type:uuid;not null;index"`
	PublisherID     uuid.UUID      `json:"publisherId" gorm:"type:uuid;not null;index"`
	GenreID         uuid.UUID      `json:"genreId" gorm:"type:uuid;not null;index"`
	Author          *Author        `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Publisher       *Publisher     `json:"publisher,omitempty" gorm:"foreignKey:PublisherID"`
	Genre           *Genre         `json:"genre,omitempty" gorm:"foreignKey:GenreID"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
