package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeTypeSelect is the only attribute type the importer creates:
// every scraped option (Size, Color, ...) becomes a single-select attribute.
const AttributeTypeSelect = "select"

type Attribute struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"`
	Type      string    `json:"type" gorm:"not null;default:select"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Translations []AttributeTranslation `json:"translations" gorm:"foreignKey:AttributeID"`
	Options      []AttributeOption      `json:"options" gorm:"foreignKey:AttributeID"`
}

type AttributeTranslation struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	AttributeID string `json:"attribute_id" gorm:"type:uuid;index:idx_attribute_locale,unique;not null"`
	Locale      string `json:"locale" gorm:"index:idx_attribute_locale,unique;not null"`
	Name        string `json:"name"`
}

type AttributeOption struct {
	ID          string  `json:"id" gorm:"type:uuid;primaryKey"`
	AttributeID string  `json:"attribute_id" gorm:"type:uuid;index;not null"`
	AdminName   string  `json:"admin_name" gorm:"not null"`
	Position    int     `json:"position"`
	SwatchPath  *string `json:"swatch_path"`

	Translations []AttributeOptionTranslation `json:"translations" gorm:"foreignKey:AttributeOptionID"`
}

type AttributeOptionTranslation struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	AttributeOptionID string `json:"attribute_option_id" gorm:"type:uuid;index:idx_option_locale,unique;not null"`
	Locale            string `json:"locale" gorm:"index:idx_option_locale,unique;not null"`
	Label             string `json:"label"`
}

// AttributeFamily groups attributes applied to a product. The importer pins
// everything to one family with code "default".
type AttributeFamily struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Attribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (o *AttributeOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (f *AttributeFamily) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
