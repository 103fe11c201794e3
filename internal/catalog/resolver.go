package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/media"
	"github.com/hassanhitleap1/bagisto-karaz/internal/models"
)

// DefaultFamilyCode is the attribute family every imported product is pinned
// to.
const DefaultFamilyCode = "default"

// Resolver is the memoizing get-or-create layer for brands, categories,
// attributes and their options. One instance lives for exactly one import
// run. All writes happen inside the transaction handed in by the caller, so
// the assembler checkpoints the caches before each product and restores them
// when its transaction rolls back; a cached pointer never outlives the row
// behind it.
type Resolver struct {
	logger  *logger.Logger
	media   *media.Fetcher
	locales []string

	family     *models.AttributeFamily
	brands     map[string]*models.Brand
	categories map[string]*models.Category
	attributes map[string]*attributeEntry

	stats ResolverStats
}

type attributeEntry struct {
	attribute *models.Attribute
	options   map[string]*models.AttributeOption
	position  int
}

// ResolverStats counts entities created (not merely resolved) during a run.
type ResolverStats struct {
	Brands     int
	Categories int
	Attributes int
	Options    int
}

func NewResolver(media *media.Fetcher, logger *logger.Logger) *Resolver {
	return &Resolver{
		logger:     logger,
		media:      media,
		brands:     map[string]*models.Brand{},
		categories: map[string]*models.Category{},
		attributes: map[string]*attributeEntry{},
	}
}

// LoadLocales reads the active locale set once at run start. An empty locale
// table degrades to ["en"] with a warning rather than an error.
func (r *Resolver) LoadLocales(db *gorm.DB) error {
	var locales []models.Locale
	if err := db.Order("code").Find(&locales).Error; err != nil {
		return fmt.Errorf("failed to load locales: %w", err)
	}

	if len(locales) == 0 {
		r.logger.Warn("no locales configured, defaulting to [en]")
		r.locales = []string{"en"}
		return nil
	}

	r.locales = make([]string, len(locales))
	for i, locale := range locales {
		r.locales[i] = locale.Code
	}
	return nil
}

func (r *Resolver) Locales() []string {
	return r.locales
}

func (r *Resolver) Stats() ResolverStats {
	return r.stats
}

// resolverState is a copy of the memoized caches taken before a product
// transaction. Restoring it unwinds cache entries whose backing rows were
// rolled back together with that transaction.
type resolverState struct {
	family     *models.AttributeFamily
	brands     map[string]*models.Brand
	categories map[string]*models.Category
	attributes map[string]*attributeEntry
	stats      ResolverStats
}

func (r *Resolver) checkpoint() resolverState {
	state := resolverState{
		family:     r.family,
		brands:     make(map[string]*models.Brand, len(r.brands)),
		categories: make(map[string]*models.Category, len(r.categories)),
		attributes: make(map[string]*attributeEntry, len(r.attributes)),
		stats:      r.stats,
	}
	for name, brand := range r.brands {
		state.brands[name] = brand
	}
	for name, category := range r.categories {
		state.categories[name] = category
	}
	// Attribute entries are mutated in place when new option values are
	// appended, so they need their own copies.
	for code, entry := range r.attributes {
		options := make(map[string]*models.AttributeOption, len(entry.options))
		for value, option := range entry.options {
			options[value] = option
		}
		state.attributes[code] = &attributeEntry{
			attribute: entry.attribute,
			options:   options,
			position:  entry.position,
		}
	}
	return state
}

func (r *Resolver) restore(state resolverState) {
	r.family = state.family
	r.brands = state.brands
	r.categories = state.categories
	r.attributes = state.attributes
	r.stats = state.stats
}

// ResolveBrand returns the brand named vendorName, creating it with
// translations for every loaded locale when absent. A nil brand with a nil
// error means the vendor name was empty. The brand image is only fetched on
// first creation.
func (r *Resolver) ResolveBrand(ctx context.Context, tx *gorm.DB, vendorName, imageURL string) (*models.Brand, error) {
	vendorName = strings.TrimSpace(vendorName)
	if vendorName == "" {
		return nil, nil
	}

	if brand, ok := r.brands[vendorName]; ok {
		return brand, nil
	}

	var brand models.Brand
	err := tx.Where("name = ?", vendorName).First(&brand).Error
	switch {
	case err == nil:
		r.brands[vendorName] = &brand
		return &brand, nil
	case err != gorm.ErrRecordNotFound:
		return nil, fmt.Errorf("failed to look up brand %q: %w", vendorName, err)
	}

	brand = models.Brand{Name: vendorName}
	for _, locale := range r.locales {
		brand.Translations = append(brand.Translations, models.BrandTranslation{
			Locale: locale,
			Name:   vendorName,
		})
	}
	if err := tx.Create(&brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create brand %q: %w", vendorName, err)
	}

	if imageURL != "" {
		if path := r.media.Acquire(ctx, imageURL, filepath.Join("brand", brand.ID)); path != nil {
			if err := tx.Model(&brand).Update("image_path", path).Error; err != nil {
				return nil, fmt.Errorf("failed to attach brand image: %w", err)
			}
		}
	}

	r.logger.Debug("created brand %q", vendorName)
	r.brands[vendorName] = &brand
	r.stats.Brands++
	return &brand, nil
}

// ResolveCategory returns the category named categoryName, creating it with
// translations for every loaded locale when absent. Description and meta
// fields are templated from the name; there is no external description to
// import.
func (r *Resolver) ResolveCategory(ctx context.Context, tx *gorm.DB, categoryName, imageURL string) (*models.Category, error) {
	categoryName = strings.TrimSpace(categoryName)
	if categoryName == "" {
		return nil, nil
	}

	if category, ok := r.categories[categoryName]; ok {
		return category, nil
	}

	var translation models.CategoryTranslation
	err := tx.Where("name = ? AND locale = ?", categoryName, r.locales[0]).First(&translation).Error
	switch {
	case err == nil:
		var category models.Category
		if err := tx.Preload("Translations").First(&category, "id = ?", translation.CategoryID).Error; err != nil {
			return nil, fmt.Errorf("failed to load category %q: %w", categoryName, err)
		}
		r.categories[categoryName] = &category
		return &category, nil
	case err != gorm.ErrRecordNotFound:
		return nil, fmt.Errorf("failed to look up category %q: %w", categoryName, err)
	}

	category := models.Category{}
	for _, locale := range r.locales {
		category.Translations = append(category.Translations, models.CategoryTranslation{
			Locale:          locale,
			Name:            categoryName,
			Slug:            slug.Make(categoryName),
			Description:     fmt.Sprintf("%s collection", categoryName),
			MetaTitle:       categoryName,
			MetaDescription: fmt.Sprintf("%s collection", categoryName),
			MetaKeywords:    categoryName,
		})
	}
	if err := tx.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", categoryName, err)
	}

	if imageURL != "" {
		if path := r.media.Acquire(ctx, imageURL, filepath.Join("category", category.ID)); path != nil {
			if err := tx.Model(&category).Update("logo_path", path).Error; err != nil {
				return nil, fmt.Errorf("failed to attach category logo: %w", err)
			}
		}
	}

	r.logger.Debug("created category %q", categoryName)
	r.categories[categoryName] = &category
	r.stats.Categories++
	return &category, nil
}

// ResolveAttributeFamily returns the shared "default" attribute family,
// creating it on first use. The family survives across runs.
func (r *Resolver) ResolveAttributeFamily(tx *gorm.DB) (*models.AttributeFamily, error) {
	if r.family != nil {
		return r.family, nil
	}

	var family models.AttributeFamily
	err := tx.Where("code = ?", DefaultFamilyCode).First(&family).Error
	switch {
	case err == nil:
		r.family = &family
		return &family, nil
	case err != gorm.ErrRecordNotFound:
		return nil, fmt.Errorf("failed to look up attribute family: %w", err)
	}

	family = models.AttributeFamily{Code: DefaultFamilyCode, Name: "Default"}
	if err := tx.Create(&family).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute family: %w", err)
	}

	r.family = &family
	return &family, nil
}

// ResolveAttribute returns the single-select attribute for the given option
// name, creating it together with one option per distinct observed value on
// first sight. Values not yet known to an already-resolved attribute are
// appended as new options instead of being dropped.
func (r *Resolver) ResolveAttribute(tx *gorm.DB, name string, values []string) (*models.Attribute, error) {
	code := slug.Make(name)
	if code == "" {
		return nil, fmt.Errorf("option name %q produces an empty attribute code", name)
	}

	entry, ok := r.attributes[code]
	if !ok {
		var err error
		entry, err = r.loadOrCreateAttribute(tx, code, name)
		if err != nil {
			return nil, err
		}
		r.attributes[code] = entry
	}

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, seen := entry.options[value]; seen {
			continue
		}
		option, err := r.createOption(tx, entry.attribute.ID, value, entry.position)
		if err != nil {
			return nil, err
		}
		entry.options[value] = option
		entry.position++
	}

	return entry.attribute, nil
}

// Option returns the resolved option of an attribute for one observed value,
// used to link variant option slots.
func (r *Resolver) Option(attributeCode, value string) (*models.AttributeOption, bool) {
	entry, ok := r.attributes[attributeCode]
	if !ok {
		return nil, false
	}
	option, ok := entry.options[strings.TrimSpace(value)]
	return option, ok
}

func (r *Resolver) loadOrCreateAttribute(tx *gorm.DB, code, name string) (*attributeEntry, error) {
	var attribute models.Attribute
	err := tx.Preload("Options").Where("code = ?", code).First(&attribute).Error
	switch {
	case err == nil:
		entry := &attributeEntry{
			attribute: &attribute,
			options:   map[string]*models.AttributeOption{},
		}
		for i := range attribute.Options {
			option := &attribute.Options[i]
			entry.options[option.AdminName] = option
			if option.Position >= entry.position {
				entry.position = option.Position + 1
			}
		}
		return entry, nil
	case err != gorm.ErrRecordNotFound:
		return nil, fmt.Errorf("failed to look up attribute %q: %w", code, err)
	}

	attribute = models.Attribute{
		Code: code,
		Type: models.AttributeTypeSelect,
	}
	for _, locale := range r.locales {
		attribute.Translations = append(attribute.Translations, models.AttributeTranslation{
			Locale: locale,
			Name:   name,
		})
	}
	if err := tx.Create(&attribute).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute %q: %w", code, err)
	}

	r.logger.Debug("created attribute %q", code)
	r.stats.Attributes++
	return &attributeEntry{
		attribute: &attribute,
		options:   map[string]*models.AttributeOption{},
	}, nil
}

func (r *Resolver) createOption(tx *gorm.DB, attributeID, value string, position int) (*models.AttributeOption, error) {
	option := models.AttributeOption{
		AttributeID: attributeID,
		AdminName:   value,
		Position:    position,
	}
	for _, locale := range r.locales {
		option.Translations = append(option.Translations, models.AttributeOptionTranslation{
			Locale: locale,
			Label:  value,
		})
	}
	if err := tx.Create(&option).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute option %q: %w", value, err)
	}

	r.stats.Options++
	return &option, nil
}
