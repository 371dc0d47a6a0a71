package resolver

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/models"
)

// DefaultPushDelay is the debounce window for aggregate write-backs.
const DefaultPushDelay = time.Second

type aggregate struct {
	avgScore    float64
	reviewCount int
}

// AggregatePusher writes observed review aggregates back to the mirror's
// avg_score/review_count columns, debounced per product: repeated pushes
// within the delay window collapse into one write carrying the latest values.
type AggregatePusher struct {
	db     *gorm.DB
	delay  time.Duration
	logger *logger.Logger

	mu     sync.Mutex
	latest map[string]aggregate
	timers map[string]*time.Timer
}

func NewAggregatePusher(db *gorm.DB, delay time.Duration, logger *logger.Logger) *AggregatePusher {
	if delay <= 0 {
		delay = DefaultPushDelay
	}
	return &AggregatePusher{
		db:     db,
		delay:  delay,
		logger: logger,
		latest: make(map[string]aggregate),
		timers: make(map[string]*time.Timer),
	}
}

// Push schedules an aggregate write for the product, resetting the debounce
// timer when one is already pending.
func (p *AggregatePusher) Push(productID string, avgScore float64, reviewCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest[productID] = aggregate{avgScore: avgScore, reviewCount: reviewCount}
	if timer, ok := p.timers[productID]; ok {
		timer.Reset(p.delay)
		return
	}
	p.timers[productID] = time.AfterFunc(p.delay, func() {
		p.flush(productID)
	})
}

func (p *AggregatePusher) flush(productID string) {
	p.mu.Lock()
	agg, ok := p.latest[productID]
	delete(p.latest, productID)
	delete(p.timers, productID)
	p.mu.Unlock()

	if !ok {
		return
	}

	err := p.db.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"avg_score":    agg.avgScore,
		"review_count": agg.reviewCount,
	}).Error
	if err != nil {
		p.logger.Error("failed to push aggregates for product %s: %v", productID, err)
	}
}
