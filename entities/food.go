package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Food struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"donor_id"`
	FoodType        string     `gorm:"not null" json:"food_type"` // cooked, raw, packed, others
	Quantity        float64    `gorm:"not null" json:"quantity"`
	Description     string     `json:"description"`
	Expiry          time.Time  `gorm:"not null" json:"expiry"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	Location        string     `gorm:"not null" json:"location"`
	Status          string     `gorm:"index;not null" json:"status"` // available, claimed, expired
	ImageURL        string     `json:"image_url,omitempty"`

	Donor *User `gorm:"foreignKey:DonorID" json:"-"`
	Timestamp
}

func (f *Food) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
