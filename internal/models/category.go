package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	LogoPath  *string   `json:"logo_path"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Translations []CategoryTranslation `json:"translations" gorm:"foreignKey:CategoryID"`
}

type CategoryTranslation struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	CategoryID      string `json:"category_id" gorm:"type:uuid;index:idx_category_locale,unique;not null"`
	Locale          string `json:"locale" gorm:"index:idx_category_locale,unique;not null"`
	Name            string `json:"name"`
	Slug            string `json:"slug" gorm:"index"`
	Description     string `json:"description"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
