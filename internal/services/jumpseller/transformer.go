package jumpseller

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/madeinportugal/storefront/internal/models"
)

const (
	// DefaultTitle is used when an upstream product carries no name.
	DefaultTitle = "Produto sem título"

	// DefaultReviewerName is used when a review has no reviewer email.
	DefaultReviewerName = "Cliente"
)

// storytellingLabels are the custom-field labels routed to the storytelling
// attribute instead of the specification list. Matching is done on the
// lowercased, accent-folded label.
var storytellingLabels = map[string]bool{
	"historia":     true,
	"storytelling": true,
}

// Transformer maps upstream shapes and mirror rows into the unified view.
type Transformer struct {
	sanitizer *bluemonday.Policy
}

func NewTransformer() *Transformer {
	return &Transformer{
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ComputeAverageRating returns the mean of the valid ratings rounded to one
// decimal place, or 0 when no review has a valid rating.
func (t *Transformer) ComputeAverageRating(reviews []Review) float64 {
	var sum float64
	var count int
	for _, r := range reviews {
		if v, ok := r.ScoreValue(); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Round(sum/float64(count)*10) / 10
}

// StripHTML reduces upstream markup to plain text.
func (t *Transformer) StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(t.sanitizer.Sanitize(s)))
}

// FromUpstream builds the mirror Product payload and its photo set from a raw
// upstream product and its (already filtered) reviews.
func (t *Transformer) FromUpstream(raw *Product, reviews []Review) (*models.Product, []models.ProductPhoto) {
	storytelling, specs := t.splitFields(raw.Fields)

	title := raw.Name
	if title == "" {
		title = DefaultTitle
	}
	sku := raw.SKU
	if sku == "" {
		sku = fmt.Sprintf("MIP-%d", raw.ID)
	}

	jumpsellerID := raw.ID
	product := &models.Product{
		JumpsellerID:   &jumpsellerID,
		Title:          title,
		Description:    t.StripHTML(raw.Description),
		Storytelling:   storytelling,
		Price:          raw.Price,
		Stock:          raw.Stock,
		SKU:            sku,
		Permalink:      raw.Permalink,
		AvgScore:       t.ComputeAverageRating(reviews),
		ReviewCount:    len(reviews),
		Specifications: specs,
	}

	return product, t.buildPhotos(raw)
}

// UpstreamView maps a live product straight to the unified view.
func (t *Transformer) UpstreamView(raw *Product, reviews []Review) *models.ProductView {
	product, photos := t.FromUpstream(raw, reviews)

	view := t.viewOf(product, photos)
	view.Reviews = make([]models.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		score, _ := r.ScoreValue()
		createdAt := time.Now()
		if r.CreatedAt != nil {
			createdAt = *r.CreatedAt
		}
		view.Reviews = append(view.Reviews, models.ReviewView{
			ID:           fmt.Sprintf("%d", r.ID),
			Score:        int(score),
			Comment:      r.Text,
			ReviewerName: ReviewerName(r.Email),
			Likes:        r.Likes,
			Dislikes:     r.Dislikes,
			CreatedAt:    createdAt,
		})
	}
	return view
}

// MirrorView maps a mirror row to the unified view. The aggregate is
// recomputed from the given reviews, not read from the stored columns, which
// may be stale.
func (t *Transformer) MirrorView(product *models.Product, reviews []models.Review) *models.ProductView {
	view := t.viewOf(product, product.Photos)
	view.ID = product.ID

	summary := models.Summarize(reviews)
	view.AvgScore = summary.AvgScore
	view.ReviewCount = summary.ReviewCount

	view.Reviews = make([]models.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view.Reviews = append(view.Reviews, models.ReviewView{
			ID:           r.ID,
			Score:        r.Score,
			Comment:      r.Comment,
			ReviewerName: r.ReviewerName,
			Likes:        r.Likes,
			Dislikes:     r.Dislikes,
			CreatedAt:    r.CreatedAt,
		})
	}
	return view
}

func (t *Transformer) viewOf(product *models.Product, photos []models.ProductPhoto) *models.ProductView {
	view := &models.ProductView{
		JumpsellerID:   product.JumpsellerID,
		Title:          product.Title,
		Description:    product.Description,
		Storytelling:   product.Storytelling,
		Price:          product.Price,
		Stock:          product.Stock,
		SKU:            product.SKU,
		Permalink:      product.Permalink,
		AvgScore:       product.AvgScore,
		ReviewCount:    product.ReviewCount,
		Specifications: product.Specifications,
		Photos:         make([]models.PhotoView, 0, len(photos)),
		Purchasable:    true,
	}
	for _, p := range photos {
		if p.IsMain {
			view.MainPhoto = p.URL
		}
		view.Photos = append(view.Photos, models.PhotoView{
			URL:    p.URL,
			Alt:    p.Alt,
			IsMain: p.IsMain,
		})
	}
	return view
}

// buildPhotos flags as main the first image with upstream position 1, or the
// first image in array order when no image has that position.
func (t *Transformer) buildPhotos(raw *Product) []models.ProductPhoto {
	if len(raw.Images) == 0 {
		return nil
	}

	mainIndex := 0
	for i, img := range raw.Images {
		if img.Position == 1 {
			mainIndex = i
			break
		}
	}

	photos := make([]models.ProductPhoto, len(raw.Images))
	for i, img := range raw.Images {
		photos[i] = models.ProductPhoto{
			URL:      img.URL,
			Alt:      raw.Name,
			IsMain:   i == mainIndex,
			Position: img.Position,
		}
	}
	return photos
}

// splitFields routes storytelling-labeled custom fields to the storytelling
// attribute and maps the rest to specification entries, in upstream order.
func (t *Transformer) splitFields(fields []CustomField) (string, []models.Specification) {
	var storytelling string
	var specs []models.Specification

	for _, f := range fields {
		value := t.StripHTML(f.Value)
		if storytellingLabels[normalizeLabel(f.Label)] {
			storytelling = value
			continue
		}
		specs = append(specs, models.Specification{
			Title:       f.Label,
			Description: value,
		})
	}
	return storytelling, specs
}

// ReviewerName derives a display name from the local part of the reviewer
// email, before the "@".
func ReviewerName(email string) string {
	if email == "" {
		return DefaultReviewerName
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// normalizeLabel lowercases and accent-folds a custom-field label so that
// e.g. "História" matches "historia".
func normalizeLabel(label string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, label)
	if err != nil {
		folded = label
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
