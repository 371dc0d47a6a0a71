package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/models"
)

type WishlistHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewWishlistHandler(db *gorm.DB, logger *logger.Logger) *WishlistHandler {
	return &WishlistHandler{
		db:     db,
		logger: logger,
	}
}

// Add puts a product on a user's wishlist. Adding twice is a no-op; the pair
// is unique.
func (h *WishlistHandler) Add(c *gin.Context) {
	userID := c.Param("id")
	productID := c.Param("productID")

	if ok := h.requireUser(c, userID); !ok {
		return
	}

	var count int64
	if err := h.db.Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check wishlist"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Product already in wishlist"})
		return
	}

	item := models.WishlistItem{UserID: userID, ProductID: productID}
	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to wishlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	userID := c.Param("id")
	productID := c.Param("productID")

	if ok := h.requireUser(c, userID); !ok {
		return
	}

	if err := h.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from wishlist"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *WishlistHandler) List(c *gin.Context) {
	userID := c.Param("id")

	if ok := h.requireUser(c, userID); !ok {
		return
	}

	var products []models.Product
	err := h.db.Preload("Photos").
		Joins("JOIN wishlist_items ON wishlist_items.product_id = products.id").
		Where("wishlist_items.user_id = ?", userID).
		Find(&products).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

// requireUser gates wishlist operations on a resolved identity.
func (h *WishlistHandler) requireUser(c *gin.Context, userID string) bool {
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return false
	}
	return true
}
