package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publisher represents a publishing house.
type Publisher struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null"`
	Country        string         `json:"country,omitempty" gorm:"type:varchar(100)"`
	FoundationYear *int           `json:"foundationYear,omitempty"`
	Description    string         `json:"description,omitempty" gorm:"type:text"`
	Website        string         `json:"website,omitempty"`
	IsActive       bool           `json:"isActive"`
	Books          []Book         `json:"books,omitempty" gorm:"foreignKey:PublisherID"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Publisher) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
