package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand is a standalone taxonomy entity keyed by the vendor name as it
// appears in the source feed.
type Brand struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	ImagePath *string   `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Translations []BrandTranslation `json:"translations" gorm:"foreignKey:BrandID"`
}

type BrandTranslation struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	BrandID string `json:"brand_id" gorm:"type:uuid;index:idx_brand_locale,unique;not null"`
	Locale  string `json:"locale" gorm:"index:idx_brand_locale,unique;not null"`
	Name    string `json:"name"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
