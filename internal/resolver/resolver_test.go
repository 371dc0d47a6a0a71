package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/madeinportugal/storefront/internal/database"
	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/models"
	"github.com/madeinportugal/storefront/internal/services/jumpseller"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestResolver(t *testing.T, db *gorm.DB, upstreamURL string, pusher *AggregatePusher) *Resolver {
	t.Helper()
	log := logger.New("error")
	client := jumpseller.NewClient(upstreamURL, "login", "token", log)
	return New(db, client, jumpseller.NewTransformer(), pusher, log)
}

func seedMirrorProduct(t *testing.T, db *gorm.DB, jumpsellerID int64, title string) *models.Product {
	t.Helper()

	user := models.User{Username: "seed", Email: fmt.Sprintf("seed%d@example.pt", jumpsellerID), Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	product := models.Product{
		JumpsellerID: &jumpsellerID,
		Title:        title,
		Price:        10,
		SKU:          fmt.Sprintf("SEED-%d", jumpsellerID),
		CreatedBy:    user.ID,
	}
	require.NoError(t, db.Create(&product).Error)

	rid := jumpsellerID * 100
	review := models.Review{
		ProductID:    product.ID,
		UserID:       user.ID,
		JumpsellerID: &rid,
		Score:        4,
		ReviewerName: "ana",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&review).Error)
	return &product
}

func TestResolve_LiveSourceWins(t *testing.T) {
	db := newTestDB(t)
	seedMirrorProduct(t, db, 1, "Título do espelho")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/1.json":
			fmt.Fprint(w, `{"product":{"id":1,"name":"Título ao vivo","price":25}}`)
		case "/products/1/reviews.json":
			fmt.Fprint(w, `[{"review":{"id":5,"rating":5}}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	view, source, err := newTestResolver(t, db, srv.URL, nil).Resolve(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, SourceLive, source)
	assert.Equal(t, "Título ao vivo", view.Title)
	assert.Equal(t, 25.0, view.Price)
	assert.Equal(t, 5.0, view.AvgScore)
}

func TestResolve_FallsBackToMirrorOnLiveFailure(t *testing.T) {
	db := newTestDB(t)
	seedMirrorProduct(t, db, 1, "Título do espelho")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	view, source, err := newTestResolver(t, db, srv.URL, nil).Resolve(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, SourceMirror, source)
	assert.Equal(t, "Título do espelho", view.Title)
	assert.Equal(t, 4.0, view.AvgScore)
	assert.Equal(t, 1, view.ReviewCount)
	assert.True(t, view.Purchasable)
}

func TestResolve_PlaceholderWhenBothMiss(t *testing.T) {
	db := newTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	view, source, err := newTestResolver(t, db, srv.URL, nil).Resolve(context.Background(), 99)

	require.NoError(t, err)
	assert.Equal(t, SourcePlaceholder, source)
	assert.Equal(t, PlaceholderTitle, view.Title)
	assert.False(t, view.Purchasable)
	assert.Empty(t, view.Photos)
}

func TestResolve_SchedulesAggregateWriteBackWhenStale(t *testing.T) {
	db := newTestDB(t)
	product := seedMirrorProduct(t, db, 1, "Manta")
	// the stored aggregate lags behind the review rows
	require.NoError(t, db.Model(product).Updates(map[string]interface{}{
		"avg_score":    0.0,
		"review_count": 0,
	}).Error)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pusher := NewAggregatePusher(db, 10*time.Millisecond, logger.New("error"))
	view, source, err := newTestResolver(t, db, srv.URL, pusher).Resolve(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, SourceMirror, source)
	assert.Equal(t, 4.0, view.AvgScore)

	// the debounced write lands after the delay
	assert.Eventually(t, func() bool {
		var refreshed models.Product
		if err := db.First(&refreshed, "id = ?", product.ID).Error; err != nil {
			return false
		}
		return refreshed.AvgScore == 4.0 && refreshed.ReviewCount == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAggregatePusher_CollapsesRepeatedPushes(t *testing.T) {
	db := newTestDB(t)
	product := seedMirrorProduct(t, db, 1, "Sabonete")

	pusher := NewAggregatePusher(db, 20*time.Millisecond, logger.New("error"))
	pusher.Push(product.ID, 3.0, 3)
	pusher.Push(product.ID, 4.2, 5)

	assert.Eventually(t, func() bool {
		var refreshed models.Product
		if err := db.First(&refreshed, "id = ?", product.ID).Error; err != nil {
			return false
		}
		// only the latest values are written
		return refreshed.AvgScore == 4.2 && refreshed.ReviewCount == 5
	}, time.Second, 10*time.Millisecond)
}
