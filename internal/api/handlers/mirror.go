package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/models"
	"github.com/madeinportugal/storefront/internal/services/jumpseller"
)

// MirrorHandler serves the resolution endpoint: mirror lookups returning the
// unified view with aggregates recomputed from the review rows, plus the
// aggregate update path the storefront pushes to.
type MirrorHandler struct {
	db          *gorm.DB
	transformer *jumpseller.Transformer
	logger      *logger.Logger
}

func NewMirrorHandler(db *gorm.DB, transformer *jumpseller.Transformer, logger *logger.Logger) *MirrorHandler {
	return &MirrorHandler{
		db:          db,
		transformer: transformer,
		logger:      logger,
	}
}

// GetByJumpsellerID serves GET /products/jumpseller/:id.
func (h *MirrorHandler) GetByJumpsellerID(c *gin.Context) {
	jumpsellerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var product models.Product
	if err := h.db.Preload("Photos").First(&product, "jumpseller_id = ?", jumpsellerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	h.serveView(c, &product)
}

// GetByID serves GET /products/:id.
func (h *MirrorHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.db.Preload("Photos").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	h.serveView(c, &product)
}

func (h *MirrorHandler) serveView(c *gin.Context, product *models.Product) {
	var reviews []models.Review
	if err := h.db.Where("product_id = ?", product.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": h.transformer.MirrorView(product, reviews)})
}

// UpdateScore serves PUT /products/:id/score, the review-count
// synchronization path pushed by the product page.
func (h *MirrorHandler) UpdateScore(c *gin.Context) {
	id := c.Param("id")

	var request struct {
		AvgScore    float64 `json:"avg_score"`
		ReviewCount int     `json:"review_count"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.AvgScore < 0 || request.AvgScore > 5 || request.ReviewCount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid aggregate values"})
		return
	}

	result := h.db.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"avg_score":    request.AvgScore,
		"review_count": request.ReviewCount,
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avg_score":    request.AvgScore,
		"review_count": request.ReviewCount,
	})
}
