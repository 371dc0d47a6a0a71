package resolver

import (
	"context"

	"gorm.io/gorm"

	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/models"
	"github.com/madeinportugal/storefront/internal/services/jumpseller"
)

// PlaceholderTitle is rendered when neither the live source nor the mirror
// has the product.
const PlaceholderTitle = "Produto não encontrado"

// Source reports where a resolved product view came from.
type Source int

const (
	SourceLive Source = iota
	SourceMirror
	SourcePlaceholder
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceMirror:
		return "mirror"
	default:
		return "placeholder"
	}
}

// Resolver answers product lookups live-first with a mirror fallback. A miss
// on both sides is a normal result, answered with the fixed placeholder; only
// a failing mirror read is an error.
type Resolver struct {
	db          *gorm.DB
	client      *jumpseller.Client
	transformer *jumpseller.Transformer
	pusher      *AggregatePusher
	logger      *logger.Logger
}

func New(db *gorm.DB, client *jumpseller.Client, transformer *jumpseller.Transformer, pusher *AggregatePusher, logger *logger.Logger) *Resolver {
	return &Resolver{
		db:          db,
		client:      client,
		transformer: transformer,
		pusher:      pusher,
		logger:      logger,
	}
}

// Resolve fetches the product live from Jumpseller, falling back to the
// mirror, and finally to the placeholder.
func (r *Resolver) Resolve(ctx context.Context, jumpsellerID int64) (*models.ProductView, Source, error) {
	raw, err := r.client.FetchProduct(ctx, jumpsellerID)
	if err != nil {
		r.logger.Warn("live fetch for product %d failed, falling back to mirror: %v", jumpsellerID, err)
	}
	if err == nil && raw != nil {
		reviews := r.client.FetchProductReviews(ctx, jumpsellerID)
		return r.transformer.UpstreamView(raw, reviews), SourceLive, nil
	}

	var product models.Product
	dbErr := r.db.Preload("Photos").Where("jumpseller_id = ?", jumpsellerID).First(&product).Error
	if dbErr == gorm.ErrRecordNotFound {
		return PlaceholderView(), SourcePlaceholder, nil
	}
	if dbErr != nil {
		return nil, SourcePlaceholder, dbErr
	}

	var reviews []models.Review
	if err := r.db.Where("product_id = ?", product.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, SourcePlaceholder, err
	}

	view := r.transformer.MirrorView(&product, reviews)

	// The stored aggregate columns may lag behind the review rows; schedule a
	// write-back when they drifted.
	if r.pusher != nil && (product.AvgScore != view.AvgScore || product.ReviewCount != view.ReviewCount) {
		r.pusher.Push(product.ID, view.AvgScore, view.ReviewCount)
	}

	return view, SourceMirror, nil
}

// PlaceholderView is the fixed not-found product: no photos, zero price and
// purchase actions disabled.
func PlaceholderView() *models.ProductView {
	return &models.ProductView{
		Title:          PlaceholderTitle,
		Photos:         []models.PhotoView{},
		Specifications: []models.Specification{},
		Purchasable:    false,
	}
}
