package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WishlistItem struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID string    `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}
