package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is insert-only from the sync's point of view: a row with a given
// upstream id is created at most once and never updated afterwards.
type Review struct {
	ID            string    `json:"id" gorm:"type:uuid;primary_key"`
	ProductID     string    `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID        string    `json:"user_id" gorm:"type:uuid;not null"`
	JumpsellerID  *int64    `json:"jumpseller_id" gorm:"uniqueIndex"`
	Score         int       `json:"score" gorm:"not null"`
	Comment       string    `json:"comment"`
	ReviewerName  string    `json:"reviewer_name"`
	ReviewerEmail string    `json:"reviewer_email"`
	Likes         int       `json:"likes"`
	Dislikes      int       `json:"dislikes"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReviewSummary is derived from a review collection, never persisted by sync.
type ReviewSummary struct {
	AvgScore    float64 `json:"avg_score"`
	ReviewCount int     `json:"review_count"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Summarize computes the aggregate for a set of mirrored reviews, rounding
// the average to one decimal place. An empty set yields a zero summary.
func Summarize(reviews []Review) ReviewSummary {
	if len(reviews) == 0 {
		return ReviewSummary{}
	}
	var total int
	for _, r := range reviews {
		total += r.Score
	}
	avg := float64(total) / float64(len(reviews))
	return ReviewSummary{
		AvgScore:    math.Round(avg*10) / 10,
		ReviewCount: len(reviews),
	}
}
