package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/models"
)

type ProductHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewProductHandler(db *gorm.DB, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		db:     db,
		logger: logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	var products []models.Product

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	// Filters
	productType := c.Query("type")
	search := c.Query("search")

	query := h.db.Model(&models.Product{})

	if productType != "" {
		query = query.Where("type = ?", productType)
	}

	if search != "" {
		query = query.Where("sku LIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	err := query.Preload("Translations").Preload("Inventories").
		Offset(offset).Limit(limit).Find(&products).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	err := h.db.
		Preload("Translations").
		Preload("Categories.Translations").
		Preload("Images").
		Preload("AttributeValues").
		Preload("Inventories").
		Preload("Children.Translations").
		First(&product, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}
