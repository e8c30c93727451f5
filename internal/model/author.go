package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author represents a book author.
type Author struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	LastName    string         `json:"lastName" gorm:"type:varchar(100);not null"`
	BirthDate   *time.Time     `json:"birthDate,omitempty"`
	Biography   string         `json:"biography,omitempty" gorm:"type:text"`
	Nationality string         `json:"nationality,omitempty" gorm:"type:varchar(50)"`
	IsActive    bool           `json:"isActive"`
	Books       []Book         `json:"books,omitempty" gorm:"foreignKey:AuthorID"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// FullName returns the display name used in book projections and exports.
func (a *Author) FullName() string {
	return a.Name + " " + a.LastName
}
