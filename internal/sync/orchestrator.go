package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/models"
	"github.com/madeinportugal/storefront/internal/services/jumpseller"
)

// Orchestrator drives one full reconciliation cycle: fetch every upstream
// product, fetch its reviews, and upsert the mirror. Runs are idempotent and
// keyed by the Jumpseller ids, so concurrent or repeated runs converge.
type Orchestrator struct {
	db          *gorm.DB
	client      *jumpseller.Client
	transformer *jumpseller.Transformer
	logger      *logger.Logger
}

// Result carries the counters of one sync run. Err is set only when the run
// aborted; products committed before the failure stay committed.
type Result struct {
	ProductsCreated int   `json:"products_created"`
	ProductsUpdated int   `json:"products_updated"`
	ReviewsCreated  int   `json:"reviews_created"`
	ReviewsSkipped  int   `json:"reviews_skipped"`
	Err             error `json:"-"`
}

func New(db *gorm.DB, client *jumpseller.Client, transformer *jumpseller.Transformer, logger *logger.Logger) *Orchestrator {
	return &Orchestrator{
		db:          db,
		client:      client,
		transformer: transformer,
		logger:      logger,
	}
}

// Run executes one sync cycle. Products are processed sequentially; upstream
// rate limits are respected by never parallelizing the fetches.
func (o *Orchestrator) Run(ctx context.Context) Result {
	var res Result

	systemUser, err := o.ensureSystemUser()
	if err != nil {
		res.Err = fmt.Errorf("failed to ensure system user: %w", err)
		return res
	}

	products := o.client.FetchAllProducts(ctx)
	if len(products) == 0 {
		o.logger.Info("sync: upstream returned no products, nothing to do")
		return res
	}

	o.logger.Info("sync: processing %d upstream products", len(products))

	for i := range products {
		raw := &products[i]

		reviews := o.client.FetchProductReviews(ctx, raw.ID)
		payload, photos := o.transformer.FromUpstream(raw, reviews)

		productID, created, err := o.upsertProduct(payload, systemUser.ID)
		if err != nil {
			res.Err = fmt.Errorf("failed to upsert product %d: %w", raw.ID, err)
			return res
		}
		if created {
			res.ProductsCreated++
		} else {
			res.ProductsUpdated++
		}

		if err := o.replacePhotos(productID, photos); err != nil {
			res.Err = fmt.Errorf("failed to replace photos for product %d: %w", raw.ID, err)
			return res
		}

		createdReviews, skipped := o.insertReviews(productID, systemUser.ID, reviews)
		res.ReviewsCreated += createdReviews
		res.ReviewsSkipped += skipped
	}

	o.logger.Info("sync: done, %d created, %d updated, %d reviews created, %d skipped",
		res.ProductsCreated, res.ProductsUpdated, res.ReviewsCreated, res.ReviewsSkipped)
	return res
}

// ensureSystemUser creates the placeholder account on first use, keyed by the
// sentinel email.
func (o *Orchestrator) ensureSystemUser() (*models.User, error) {
	var user models.User
	err := o.db.Where("email = ?", models.SystemUserEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		Username:  "madeinportugal",
		FirstName: "Made in",
		LastName:  "Portugal",
		Email:     models.SystemUserEmail,
		Password:  uuid.New().String(),
	}
	if err := o.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// upsertProduct creates or updates the mirror row keyed by the Jumpseller id
// and reports whether it was newly created.
func (o *Orchestrator) upsertProduct(payload *models.Product, systemUserID string) (string, bool, error) {
	var existing models.Product
	err := o.db.Where("jumpseller_id = ?", payload.JumpsellerID).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		payload.CreatedBy = systemUserID
		if err := o.db.Create(payload).Error; err != nil {
			return "", false, err
		}
		return payload.ID, true, nil
	}
	if err != nil {
		return "", false, err
	}

	payload.ID = existing.ID
	payload.CreatedBy = existing.CreatedBy
	payload.CreatedAt = existing.CreatedAt
	if err := o.db.Save(payload).Error; err != nil {
		return "", false, err
	}
	return existing.ID, false, nil
}

// replacePhotos swaps the whole photo set, delete-then-insert. The set is
// never merged incrementally.
func (o *Orchestrator) replacePhotos(productID string, photos []models.ProductPhoto) error {
	if err := o.db.Where("product_id = ?", productID).Delete(&models.ProductPhoto{}).Error; err != nil {
		return err
	}
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		photos[i].ProductID = productID
	}
	return o.db.Create(&photos).Error
}

// insertReviews creates the reviews not seen before, by Jumpseller id. A
// failed insert skips that review only; the loop continues.
func (o *Orchestrator) insertReviews(productID, systemUserID string, reviews []jumpseller.Review) (int, int) {
	var created, skipped int

	for _, raw := range reviews {
		var count int64
		if err := o.db.Model(&models.Review{}).Where("jumpseller_id = ?", raw.ID).Count(&count).Error; err != nil {
			o.logger.Error("sync: failed to check review %d: %v", raw.ID, err)
			skipped++
			continue
		}
		if count > 0 {
			continue
		}

		score, _ := raw.ScoreValue()
		createdAt := time.Now()
		if raw.CreatedAt != nil {
			createdAt = *raw.CreatedAt
		}

		jumpsellerID := raw.ID
		review := models.Review{
			ProductID:     productID,
			UserID:        systemUserID,
			JumpsellerID:  &jumpsellerID,
			Score:         int(score),
			Comment:       raw.Text,
			ReviewerName:  jumpseller.ReviewerName(raw.Email),
			ReviewerEmail: raw.Email,
			Likes:         raw.Likes,
			Dislikes:      raw.Dislikes,
			CreatedAt:     createdAt,
		}
		if err := o.db.Create(&review).Error; err != nil {
			o.logger.Error("sync: failed to create review %d: %v", raw.ID, err)
			skipped++
			continue
		}
		created++
	}
	return created, skipped
}
