package models

import (
	"time"
)

// Allergen is one allergy of a user in the SQL profile store.
// (user_id, name) is unique so that merging is an insert-or-ignore.
type Allergen struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:256;not null;uniqueIndex:idx_allergen_user_name" json:"userId"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_allergen_user_name" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Allergen) TableName() string {
	return "voice_allergens"
}
