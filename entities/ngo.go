package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NGO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"index;not null" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Location string    `gorm:"not null" json:"location"`
	Lat      float64   `gorm:"not null" json:"lat"`
	Lng      float64   `gorm:"not null" json:"lng"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	Timestamp
}

func (NGO) TableName() string {
	return "ngos"
}

func (n *NGO) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
