package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductType string

const (
	ProductTypeSimple       ProductType = "simple"
	ProductTypeConfigurable ProductType = "configurable"
)

type Product struct {
	ID                string            `json:"id" gorm:"type:uuid;primaryKey"`
	SKU               string            `json:"sku" gorm:"uniqueIndex;not null"`
	Type              ProductType       `json:"type" gorm:"not null;default:simple"`
	AttributeFamilyID string            `json:"attribute_family_id" gorm:"type:uuid;not null"`
	ParentID          *string           `json:"parent_id" gorm:"type:uuid;index"`
	BrandID           *string           `json:"brand_id" gorm:"type:uuid"`
	Price             float64           `json:"price" gorm:"type:decimal(12,4)"`
	Weight            float64           `json:"weight" gorm:"type:decimal(12,4)"`
	MainImage         *string           `json:"main_image"`
	SuperAttributes   datatypes.JSON    `json:"super_attributes"`
	Metadata          datatypes.JSONMap `json:"metadata"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	Translations    []ProductTranslation    `json:"translations" gorm:"foreignKey:ProductID"`
	Categories      []Category              `json:"categories" gorm:"many2many:product_categories"`
	Images          []ProductImage          `json:"images" gorm:"foreignKey:ProductID"`
	AttributeValues []ProductAttributeValue `json:"attribute_values" gorm:"foreignKey:ProductID"`
	Inventories     []Inventory             `json:"inventories" gorm:"foreignKey:ProductID"`
	Children        []Product               `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

// ProductTranslation holds the per-locale presentation fields of a product.
// One row per locale loaded at run start.
type ProductTranslation struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	ProductID        string `json:"product_id" gorm:"type:uuid;index:idx_product_locale,unique;not null"`
	Locale           string `json:"locale" gorm:"index:idx_product_locale,unique;not null"`
	Name             string `json:"name"`
	URLKey           string `json:"url_key" gorm:"index"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	MetaTitle        string `json:"meta_title"`
	MetaDescription  string `json:"meta_description"`
	MetaKeywords     string `json:"meta_keywords"`
}

type ProductImage struct {
	ID        string `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID string `json:"product_id" gorm:"type:uuid;index;not null"`
	Path      string `json:"path" gorm:"not null"`
	Position  int    `json:"position"`
}

// ProductAttributeValue links a simple product to the attribute option it
// carries for one of its option slots (e.g. size=M).
type ProductAttributeValue struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	ProductID         string `json:"product_id" gorm:"type:uuid;index;not null"`
	AttributeID       string `json:"attribute_id" gorm:"type:uuid;not null"`
	AttributeOptionID string `json:"attribute_option_id" gorm:"type:uuid;not null"`
}

// Inventory keeps the stock quantity of a product per channel. The importer
// writes a single "default" channel.
type Inventory struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID string `json:"product_id" gorm:"type:uuid;index:idx_inventory_channel,unique;not null"`
	Channel   string `json:"channel" gorm:"index:idx_inventory_channel,unique;not null;default:default"`
	Qty       int    `json:"qty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
