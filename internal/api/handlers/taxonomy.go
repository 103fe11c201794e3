package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/models"
)

// TaxonomyHandler serves the entities the importer resolves around products:
// categories, brands and attributes.
type TaxonomyHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewTaxonomyHandler(db *gorm.DB, logger *logger.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		db:     db,
		logger: logger,
	}
}

func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.db.Preload("Translations").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *TaxonomyHandler) ListBrands(c *gin.Context) {
	var brands []models.Brand
	if err := h.db.Preload("Translations").Order("name").Find(&brands).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch brands"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": brands})
}

func (h *TaxonomyHandler) ListAttributes(c *gin.Context) {
	var attributes []models.Attribute
	err := h.db.Preload("Translations").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Options.Translations").
		Order("code").Find(&attributes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attributes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attributes})
}
