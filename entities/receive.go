package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receive records a completed transfer. FoodID is unique: a listing is received at most once.
type Receive struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FoodID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"food_id"`
	DonatedByID  uuid.UUID `gorm:"type:uuid;index;not null" json:"donated_by_id"`
	ReceivedByID uuid.UUID `gorm:"type:uuid;index;not null" json:"received_by_id"`
	ReceivedAt   time.Time `gorm:"not null" json:"received_at"`

	Food       *Food `gorm:"foreignKey:FoodID" json:"-"`
	DonatedBy  *User `gorm:"foreignKey:DonatedByID" json:"-"`
	ReceivedBy *User `gorm:"foreignKey:ReceivedByID" json:"-"`
}

func (r *Receive) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = time.Now().UTC()
	}
	return nil
}
