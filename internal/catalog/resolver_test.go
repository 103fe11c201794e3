package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hassanhitleap1/bagisto-karaz/internal/database"
	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/media"
	"github.com/hassanhitleap1/bagisto-karaz/internal/models"
)

func testDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New("sqlite://" + filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testResolver(t *testing.T, db *database.Database) *Resolver {
	t.Helper()
	log := logger.New("error")
	r := NewResolver(media.NewFetcher(t.TempDir(), log), log)
	require.NoError(t, r.LoadLocales(db.DB))
	return r
}

func seedLocales(t *testing.T, db *database.Database, codes ...string) {
	t.Helper()
	for _, code := range codes {
		require.NoError(t, db.DB.Create(&models.Locale{Code: code, Name: code}).Error)
	}
}

func TestLoadLocalesDefaultsToEnglish(t *testing.T) {
	db := testDB(t)
	resolver := testResolver(t, db)
	assert.Equal(t, []string{"en"}, resolver.Locales())
}

func TestLoadLocalesReadsConfiguredSet(t *testing.T) {
	db := testDB(t)
	seedLocales(t, db, "en", "ar")
	resolver := testResolver(t, db)
	assert.Equal(t, []string{"ar", "en"}, resolver.Locales())
}

func TestResolveBrandIsIdempotent(t *testing.T) {
	db := testDB(t)
	resolver := testResolver(t, db)
	ctx := context.Background()

	first, err := resolver.ResolveBrand(ctx, db.DB, "Acme", "")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := resolver.ResolveBrand(ctx, db.DB, "Acme", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.DB.Model(&models.Brand{}).Count(&count)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, resolver.Stats().Brands)
}

func TestResolveBrandSkipsEmptyVendor(t *testing.T) {
	db := testDB(t)
	resolver := testResolver(t, db)

	brand, err := resolver.ResolveBrand(context.Background(), db.DB, "  ", "")
	require.NoError(t, err)
	assert.Nil(t, brand)
}

func TestResolveBrandReusesRowsFromEarlierRuns(t *testing.T) {
	db := testDB(t)

	first := testResolver(t, db)
	created, err := first.ResolveBrand(context.Background(), db.DB, "Acme", "")
	require.NoError(t, err)

	// A fresh resolver simulates a second run against the same catalog.
	second := testResolver(t, db)
	resolved, err := second.ResolveBrand(context.Background(), db.DB, "Acme", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
	assert.Equal(t, 0, second.Stats().Brands)
}

func TestResolveCategoryCreatesTranslationsPerLocale(t *testing.T) {
	db := testDB(t)
	seedLocales(t, db, "en", "ar")
	resolver := testResolver(t, db)

	category, err := resolver.ResolveCategory(context.Background(), db.DB, "Summer Shirts", "")
	require.NoError(t, err)
	require.NotNil(t, category)

	var translations []models.CategoryTranslation
	require.NoError(t, db.DB.Where("category_id = ?", category.ID).Find(&translations).Error)
	require.Len(t, translations, 2)
	assert.Equal(t, "Summer Shirts", translations[0].Name)
	assert.Equal(t, "summer-shirts", translations[0].Slug)
	assert.NotEmpty(t, translations[0].Description)

	again, err := resolver.ResolveCategory(context.Background(), db.DB, "Summer Shirts", "")
	require.NoError(t, err)
	assert.Equal(t, category.ID, again.ID)
	assert.Equal(t, 1, resolver.Stats().Categories)
}

func TestResolveAttributeFamilySurvivesRuns(t *testing.T) {
	db := testDB(t)

	first := testResolver(t, db)
	family, err := first.ResolveAttributeFamily(db.DB)
	require.NoError(t, err)
	assert.Equal(t, DefaultFamilyCode, family.Code)

	second := testResolver(t, db)
	again, err := second.ResolveAttributeFamily(db.DB)
	require.NoError(t, err)
	assert.Equal(t, family.ID, again.ID)

	var count int64
	db.DB.Model(&models.AttributeFamily{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResolveAttributeCreatesOptionsOnce(t *testing.T) {
	db := testDB(t)
	resolver := testResolver(t, db)

	attribute, err := resolver.ResolveAttribute(db.DB, "Size", []string{"S", "M", "S"})
	require.NoError(t, err)
	assert.Equal(t, "size", attribute.Code)
	assert.Equal(t, models.AttributeTypeSelect, attribute.Type)

	var options []models.AttributeOption
	require.NoError(t, db.DB.Where("attribute_id = ?", attribute.ID).Order("position").Find(&options).Error)
	require.Len(t, options, 2)
	assert.Equal(t, "S", options[0].AdminName)
	assert.Equal(t, "M", options[1].AdminName)

	option, ok := resolver.Option("size", "M")
	require.True(t, ok)
	assert.Equal(t, options[1].ID, option.ID)
}

func TestResolveAttributeAppendsNewValues(t *testing.T) {
	db := testDB(t)
	resolver := testResolver(t, db)

	first, err := resolver.ResolveAttribute(db.DB, "Size", []string{"S", "M"})
	require.NoError(t, err)

	// A later product introducing a value unknown at first creation must not
	// lose it.
	second, err := resolver.ResolveAttribute(db.DB, "Size", []string{"M", "XL"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var options []models.AttributeOption
	require.NoError(t, db.DB.Where("attribute_id = ?", first.ID).Order("position").Find(&options).Error)
	require.Len(t, options, 3)
	assert.Equal(t, "XL", options[2].AdminName)

	assert.Equal(t, 1, resolver.Stats().Attributes)
	assert.Equal(t, 3, resolver.Stats().Options)
}

func TestResolveAttributeLoadsExistingOptions(t *testing.T) {
	db := testDB(t)

	first := testResolver(t, db)
	_, err := first.ResolveAttribute(db.DB, "Color", []string{"Red", "Blue"})
	require.NoError(t, err)

	second := testResolver(t, db)
	attribute, err := second.ResolveAttribute(db.DB, "Color", []string{"Blue", "Green"})
	require.NoError(t, err)

	var count int64
	db.DB.Model(&models.AttributeOption{}).Where("attribute_id = ?", attribute.ID).Count(&count)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, 0, second.Stats().Attributes)
	assert.Equal(t, 1, second.Stats().Options)
}
