package models

import "time"

// ProductView is the unified shape consumed by display code regardless of
// whether the data came live from Jumpseller or from the mirror.
type ProductView struct {
	ID             string          `json:"id"`
	JumpsellerID   *int64          `json:"jumpseller_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Storytelling   string          `json:"storytelling"`
	Price          float64         `json:"price"`
	Stock          int             `json:"stock"`
	SKU            string          `json:"sku"`
	Permalink      string          `json:"permalink"`
	AvgScore       float64         `json:"avg_score"`
	ReviewCount    int             `json:"review_count"`
	MainPhoto      string          `json:"main_photo"`
	Photos         []PhotoView     `json:"photos"`
	Specifications []Specification `json:"specifications"`
	Reviews        []ReviewView    `json:"reviews,omitempty"`
	Purchasable    bool            `json:"purchasable"`
}

type PhotoView struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	IsMain bool   `json:"is_main"`
}

// ReviewView carries a denormalized snapshot of the author's display fields.
type ReviewView struct {
	ID           string    `json:"id"`
	Score        int       `json:"score"`
	Comment      string    `json:"comment"`
	ReviewerName string    `json:"reviewer_name"`
	Likes        int       `json:"likes"`
	Dislikes     int       `json:"dislikes"`
	CreatedAt    time.Time `json:"created_at"`
}
