package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hassanhitleap1/bagisto-karaz/internal/database"
	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/models"
)

func testRouter(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New("sqlite://" + filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.New("error")
	productHandler := NewProductHandler(db.DB, log)
	taxonomyHandler := NewTaxonomyHandler(db.DB, log)

	router := gin.New()
	router.GET("/api/v1/products", productHandler.List)
	router.GET("/api/v1/products/:id", productHandler.Get)
	router.GET("/api/v1/brands", taxonomyHandler.ListBrands)
	return router, db
}

func seedProduct(t *testing.T, db *database.Database, sku string) *models.Product {
	t.Helper()

	family := models.AttributeFamily{Code: "default", Name: "Default"}
	require.NoError(t, db.DB.FirstOrCreate(&family, models.AttributeFamily{Code: "default"}).Error)

	product := models.Product{
		SKU:               sku,
		Type:              models.ProductTypeSimple,
		AttributeFamilyID: family.ID,
		Price:             9.99,
		Translations: []models.ProductTranslation{
			{Locale: "en", Name: "Product " + sku, URLKey: "product-" + sku},
		},
		Inventories: []models.Inventory{{Channel: "default", Qty: 4}},
	}
	require.NoError(t, db.DB.Create(&product).Error)
	return &product
}

func TestProductList(t *testing.T) {
	router, db := testRouter(t)
	seedProduct(t, db, "SKU-1")
	seedProduct(t, db, "SKU-2")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []models.Product `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 2, body.Pagination.Total)
}

func TestProductListFiltersBySKU(t *testing.T) {
	router, db := testRouter(t)
	seedProduct(t, db, "SHIRT-1")
	seedProduct(t, db, "MUG-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?search=SHIRT", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "SHIRT-1", body.Data[0].SKU)
}

func TestProductGet(t *testing.T) {
	router, db := testRouter(t)
	product := seedProduct(t, db, "SKU-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SKU-1", body.Data.SKU)
	require.Len(t, body.Data.Translations, 1)
	assert.Equal(t, "Product SKU-1", body.Data.Translations[0].Name)
}

func TestProductGetNotFound(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/does-not-exist", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBrandList(t *testing.T) {
	router, db := testRouter(t)
	require.NoError(t, db.DB.Create(&models.Brand{
		Name:         "Acme",
		Translations: []models.BrandTranslation{{Locale: "en", Name: "Acme"}},
	}).Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/brands", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.Brand `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Acme", body.Data[0].Name)
}
