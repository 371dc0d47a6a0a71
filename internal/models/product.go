package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product mirrors one upstream catalog item. At most one row exists per
// Jumpseller id; purely local products carry a nil JumpsellerID.
type Product struct {
	ID             string          `json:"id" gorm:"type:uuid;primary_key"`
	JumpsellerID   *int64          `json:"jumpseller_id" gorm:"uniqueIndex"`
	Title          string          `json:"title" gorm:"not null"`
	Description    string          `json:"description"`
	Storytelling   string          `json:"storytelling"`
	Price          float64         `json:"price" gorm:"type:decimal(10,2)"`
	Stock          int             `json:"stock"`
	SKU            string          `json:"sku"`
	Permalink      string          `json:"permalink"`
	AvgScore       float64         `json:"avg_score"`
	ReviewCount    int             `json:"review_count"`
	Specifications []Specification `json:"specifications" gorm:"serializer:json"`
	CreatedBy      string          `json:"created_by" gorm:"type:uuid"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Photos  []ProductPhoto `json:"photos" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews []Review       `json:"reviews" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// Specification is one ordered title/description pair sourced from the
// upstream custom fields.
type Specification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ProductPhoto struct {
	ID        string `json:"id" gorm:"type:uuid;primary_key"`
	ProductID string `json:"product_id" gorm:"type:uuid;not null;index"`
	URL       string `json:"url" gorm:"not null"`
	Alt       string `json:"alt"`
	IsMain    bool   `json:"is_main"`
	Position  int    `json:"position"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (p *ProductPhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
