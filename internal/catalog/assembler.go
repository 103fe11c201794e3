package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/media"
	"github.com/hassanhitleap1/bagisto-karaz/internal/models"
	"github.com/hassanhitleap1/bagisto-karaz/internal/shopify"
)

// ErrDuplicateSKU marks the expected, recoverable condition of a product
// whose canonical SKU already exists in the catalog.
var ErrDuplicateSKU = errors.New("duplicate sku")

// InventoryChannel is the single stock channel the importer writes.
const InventoryChannel = "default"

type Status string

const (
	StatusImported Status = "imported"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Outcome is the per-product import result. Exactly one of Reason (skips)
// and Err (failures) is set for non-imported outcomes.
type Outcome struct {
	Status    Status
	Reason    string
	Err       error
	ProductID string
	SKU       string
}

// Assembler maps one source product into catalog rows inside a single
// transaction. A failure rolls back every row of that product, including
// entities the resolver created on its behalf, and never touches products
// committed earlier.
type Assembler struct {
	db       *gorm.DB
	resolver *Resolver
	media    *media.Fetcher
	logger   *logger.Logger
	strip    *bluemonday.Policy
}

func NewAssembler(db *gorm.DB, resolver *Resolver, media *media.Fetcher, logger *logger.Logger) *Assembler {
	return &Assembler{
		db:       db,
		resolver: resolver,
		media:    media,
		logger:   logger,
		strip:    bluemonday.StrictPolicy(),
	}
}

// Import runs the full assembly of one source product: SKU resolution,
// brand/category/attribute resolution, parent row, variant fan-out, images,
// tags. Commit-or-rollback entirely.
func (a *Assembler) Import(ctx context.Context, src *shopify.Product) Outcome {
	if strings.TrimSpace(src.Title) == "" {
		return Outcome{Status: StatusSkipped, Reason: "missing title"}
	}
	if len(src.Variants) == 0 {
		return Outcome{Status: StatusSkipped, Reason: "no variants", SKU: src.Handle}
	}

	var result Outcome
	state := a.resolver.checkpoint()
	err := a.db.Transaction(func(tx *gorm.DB) error {
		outcome, err := a.assemble(ctx, tx, src)
		if err != nil {
			return err
		}
		result = outcome
		return nil
	})

	if err != nil {
		// The rollback un-created any entity the resolver made for this
		// product; drop those cache entries with it.
		a.resolver.restore(state)
		if errors.Is(err, ErrDuplicateSKU) {
			a.logger.Info("skipping product %q: %v", src.Title, err)
			return Outcome{Status: StatusSkipped, Reason: err.Error()}
		}
		a.logger.Error("failed to import product %q: %v", src.Title, err)
		return Outcome{Status: StatusFailed, Err: err}
	}

	return result
}

func (a *Assembler) assemble(ctx context.Context, tx *gorm.DB, src *shopify.Product) (Outcome, error) {
	configurable := len(src.Variants) > 1
	first := src.FirstVariant()

	// The canonical SKU prefers the first variant's SKU. A configurable
	// parent gets its own synthesized SKU so it never competes with the
	// child that carries the canonical one.
	canonicalSKU := strings.TrimSpace(first.Sku)
	if canonicalSKU == "" {
		canonicalSKU = synthesizeSKU(src.Title)
	}
	if exists, err := skuExists(tx, canonicalSKU); err != nil {
		return Outcome{}, err
	} else if exists {
		return Outcome{}, fmt.Errorf("%w: %s", ErrDuplicateSKU, canonicalSKU)
	}

	parentSKU := canonicalSKU
	if configurable && strings.TrimSpace(first.Sku) != "" {
		parentSKU = synthesizeSKU(src.Title)
	}

	brand, err := a.resolver.ResolveBrand(ctx, tx, src.Vendor, "")
	if err != nil {
		return Outcome{}, err
	}

	var categories []*models.Category
	if typeCategory, err := a.resolver.ResolveCategory(ctx, tx, src.ProductType, ""); err != nil {
		return Outcome{}, err
	} else if typeCategory != nil {
		categories = append(categories, typeCategory)
	}

	family, err := a.resolver.ResolveAttributeFamily(tx)
	if err != nil {
		return Outcome{}, err
	}

	// Super attributes: one single-select attribute per source option,
	// ordered as listed in the feed.
	var superAttributes []*models.Attribute
	for _, option := range src.Options {
		if strings.TrimSpace(option.Name) == "" {
			continue
		}
		attribute, err := a.resolver.ResolveAttribute(tx, option.Name, option.Values)
		if err != nil {
			return Outcome{}, err
		}
		superAttributes = append(superAttributes, attribute)
	}

	product := models.Product{
		SKU:               parentSKU,
		Type:              models.ProductTypeSimple,
		AttributeFamilyID: family.ID,
		Price:             parsePrice(first.Price),
		Weight:            variantWeight(first),
		Metadata: datatypes.JSONMap{
			"shopify_id": src.ID,
			"handle":     src.Handle,
		},
	}
	if configurable {
		product.Type = models.ProductTypeConfigurable
		ids := make([]string, len(superAttributes))
		for i, attribute := range superAttributes {
			ids[i] = attribute.ID
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to encode super attributes: %w", err)
		}
		product.SuperAttributes = datatypes.JSON(raw)
	}

	product.Translations = a.productTranslations(src, src.Title)
	product.Inventories = []models.Inventory{{
		Channel: InventoryChannel,
		Qty:     first.InventoryQuantity,
	}}

	if err := tx.Create(&product).Error; err != nil {
		return Outcome{}, fmt.Errorf("failed to create product %q: %w", parentSKU, err)
	}

	if brand != nil {
		if err := tx.Model(&product).Update("brand_id", brand.ID).Error; err != nil {
			return Outcome{}, fmt.Errorf("failed to attach brand: %w", err)
		}
	}

	if src.Tags != nil {
		tagCategories, err := a.resolveTagCategories(ctx, tx, src.Tags, categories)
		if err != nil {
			return Outcome{}, err
		}
		categories = append(categories, tagCategories...)
	}
	for _, category := range categories {
		if err := tx.Model(&product).Association("Categories").Append(category); err != nil {
			return Outcome{}, fmt.Errorf("failed to link category: %w", err)
		}
	}

	if err := a.importImages(ctx, tx, &product, src.Images); err != nil {
		return Outcome{}, err
	}

	if configurable {
		if err := a.importVariants(ctx, tx, &product, src, superAttributes); err != nil {
			return Outcome{}, err
		}
	} else {
		err := tx.Model(&models.Inventory{}).
			Where("product_id = ? AND channel = ?", product.ID, InventoryChannel).
			Update("qty", first.InventoryQuantity).Error
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to update inventory: %w", err)
		}
	}

	return Outcome{Status: StatusImported, ProductID: product.ID, SKU: product.SKU}, nil
}

// importImages downloads and persists the gallery in feed order. The first
// image that downloads successfully becomes the product's main image; a
// product may end up with none without failing the import.
func (a *Assembler) importImages(ctx context.Context, tx *gorm.DB, product *models.Product, images []shopify.Image) error {
	mainAssigned := false
	for i, image := range images {
		path := a.media.Acquire(ctx, image.Src, filepath.Join("product", product.ID))
		if path == nil {
			continue
		}

		row := models.ProductImage{
			ProductID: product.ID,
			Path:      *path,
			Position:  i,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to persist product image: %w", err)
		}

		if !mainAssigned {
			if err := tx.Model(product).Update("main_image", path).Error; err != nil {
				return fmt.Errorf("failed to assign main image: %w", err)
			}
			mainAssigned = true
		}
	}
	return nil
}

// importVariants creates one simple child per source variant, links each of
// its option-value slots against the resolved attributes, and assigns the
// variant's own image when the feed references one. Duplicate variant SKUs
// skip only that variant.
func (a *Assembler) importVariants(ctx context.Context, tx *gorm.DB, parent *models.Product, src *shopify.Product, superAttributes []*models.Attribute) error {
	for i := range src.Variants {
		variant := &src.Variants[i]

		sku := strings.TrimSpace(variant.Sku)
		if sku == "" {
			sku = fmt.Sprintf("%s-%d", parent.SKU, i+1)
		}
		if exists, err := skuExists(tx, sku); err != nil {
			return err
		} else if exists {
			a.logger.Info("skipping variant %q of %q: duplicate sku", sku, src.Title)
			continue
		}

		name := src.Title
		if variant.Title != "" && variant.Title != "Default Title" {
			name = fmt.Sprintf("%s %s", src.Title, variant.Title)
		}

		child := models.Product{
			SKU:               sku,
			Type:              models.ProductTypeSimple,
			AttributeFamilyID: parent.AttributeFamilyID,
			ParentID:          &parent.ID,
			BrandID:           parent.BrandID,
			Price:             parsePrice(variant.Price),
			Weight:            variantWeight(variant),
			Metadata: datatypes.JSONMap{
				"shopify_id":         src.ID,
				"shopify_variant_id": variant.ID,
			},
			Translations: a.productTranslations(src, name),
			Inventories: []models.Inventory{{
				Channel: InventoryChannel,
				Qty:     variant.InventoryQuantity,
			}},
		}
		if err := tx.Create(&child).Error; err != nil {
			return fmt.Errorf("failed to create variant %q: %w", sku, err)
		}

		for slot, value := range variant.OptionValues() {
			if slot >= len(superAttributes) {
				break
			}
			if value == "" {
				continue
			}
			attribute := superAttributes[slot]
			option, ok := a.resolver.Option(attribute.Code, value)
			if !ok {
				a.logger.Warn("no option %q for attribute %q on variant %q", value, attribute.Code, sku)
				continue
			}
			link := models.ProductAttributeValue{
				ProductID:         child.ID,
				AttributeID:       attribute.ID,
				AttributeOptionID: option.ID,
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link option %q: %w", value, err)
			}
		}

		if variant.ImageID != nil {
			if image := imageByID(src.Images, *variant.ImageID); image != nil {
				if path := a.media.Acquire(ctx, image.Src, filepath.Join("product", child.ID)); path != nil {
					if err := tx.Model(&child).Update("main_image", path).Error; err != nil {
						return fmt.Errorf("failed to assign variant image: %w", err)
					}
				}
			}
		}
	}
	return nil
}

// resolveTagCategories turns every distinct non-empty tag into a category,
// excluding ones the product is already linked to.
func (a *Assembler) resolveTagCategories(ctx context.Context, tx *gorm.DB, tags shopify.TagList, existing []*models.Category) ([]*models.Category, error) {
	known := map[string]bool{}
	for _, category := range existing {
		known[category.ID] = true
	}

	var resolved []*models.Category
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true

		category, err := a.resolver.ResolveCategory(ctx, tx, tag, "")
		if err != nil {
			return nil, err
		}
		if category == nil || known[category.ID] {
			continue
		}
		known[category.ID] = true
		resolved = append(resolved, category)
	}
	return resolved, nil
}

func (a *Assembler) productTranslations(src *shopify.Product, name string) []models.ProductTranslation {
	stripped := a.stripHTML(src.BodyHTML)
	urlKey := slug.Make(name) + "-" + randomSuffix()

	translations := make([]models.ProductTranslation, 0, len(a.resolver.Locales()))
	for _, locale := range a.resolver.Locales() {
		translations = append(translations, models.ProductTranslation{
			Locale:           locale,
			Name:             name,
			URLKey:           urlKey,
			Description:      src.BodyHTML,
			ShortDescription: stripped,
			MetaTitle:        src.Title,
			MetaDescription:  truncate(stripped, 255),
			MetaKeywords:     strings.Join(src.Tags, ","),
		})
	}
	return translations
}

func (a *Assembler) stripHTML(body string) string {
	return strings.TrimSpace(html.UnescapeString(a.strip.Sanitize(body)))
}

// truncate caps s at n runes; the meta columns are varchar-bounded.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func skuExists(tx *gorm.DB, sku string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check sku %q: %w", sku, err)
	}
	return count > 0, nil
}

func synthesizeSKU(title string) string {
	return slug.Make(title) + "-" + randomSuffix()
}

func randomSuffix() string {
	return uuid.New().String()[:8]
}

func parsePrice(raw string) float64 {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return price
}

// variantWeight prefers the explicit weight field, falling back to grams.
func variantWeight(v *shopify.Variant) float64 {
	if v.Weight > 0 {
		return v.Weight
	}
	return float64(v.Grams) / 1000
}

func imageByID(images []shopify.Image, id int64) *shopify.Image {
	for i := range images {
		if images[i].ID == id {
			return &images[i]
		}
	}
	return nil
}
