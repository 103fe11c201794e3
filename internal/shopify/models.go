package shopify

import (
	"encoding/json"
	"strings"
	"time"
)

// Product represents one entry of a storefront's public products.json feed.
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Tags        TagList    `json:"tags"`
	Options     []Option   `json:"options"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	Image       *Image     `json:"image"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// FirstVariant returns the variant at position 1, falling back to the first
// one listed. Nil when the feed entry carries no variants at all.
func (p *Product) FirstVariant() *Variant {
	for i := range p.Variants {
		if p.Variants[i].Position == 1 {
			return &p.Variants[i]
		}
	}
	if len(p.Variants) > 0 {
		return &p.Variants[0]
	}
	return nil
}

// Variant represents a purchasable SKU-bearing combination of option values.
type Variant struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Sku               string  `json:"sku"`
	Position          int     `json:"position"`
	Price             string  `json:"price"`
	CompareAtPrice    *string `json:"compare_at_price"`
	Option1           *string `json:"option1"`
	Option2           *string `json:"option2"`
	Option3           *string `json:"option3"`
	Grams             int     `json:"grams"`
	Weight            float64 `json:"weight"`
	InventoryQuantity int     `json:"inventory_quantity"`
	ImageID           *int64  `json:"image_id"`
}

// OptionValues returns the variant's three option-value slots in order.
// Unset slots stay as empty strings so slot indexes keep lining up with the
// product's option list.
func (v *Variant) OptionValues() []string {
	values := make([]string, 0, 3)
	for _, opt := range []*string{v.Option1, v.Option2, v.Option3} {
		if opt == nil {
			values = append(values, "")
			continue
		}
		values = append(values, strings.TrimSpace(*opt))
	}
	return values
}

// Image represents a product image reference in the feed.
type Image struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	Src      string `json:"src"`
}

// Option represents a product option and its observed values.
type Option struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// TagList tolerates both shapes the feed has been seen to use for tags:
// a comma-separated string and a plain JSON array.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*t = splitTags(asString)
		return nil
	}

	var asList []string
	if err := json.Unmarshal(data, &asList); err != nil {
		return err
	}

	cleaned := TagList{}
	for _, tag := range asList {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	*t = cleaned
	return nil
}

func splitTags(raw string) TagList {
	tags := TagList{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ProductsResponse represents the response of the products.json endpoint. An
// empty Products slice is the feed's end-of-data signal.
type ProductsResponse struct {
	Products []Product `json:"products"`
}
