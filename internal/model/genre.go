package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Genre represents a literary genre.
type Genre struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	IsActive    bool           `json:"isActive"`
	Books       []Book         `json:"books,omitempty" gorm:"foreignKey:GenreID"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
