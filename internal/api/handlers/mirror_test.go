package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
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

func newMirrorRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewMirrorHandler(db, jumpseller.NewTransformer(), logger.New("error"))
	router.GET("/products/jumpseller/:id", h.GetByJumpsellerID)
	router.GET("/products/:id", h.GetByID)
	router.PUT("/products/:id/score", h.UpdateScore)
	return router
}

func seedProduct(t *testing.T, db *gorm.DB, jumpsellerID int64) *models.Product {
	t.Helper()

	user := models.User{Username: "seed", Email: fmt.Sprintf("seed%d@example.pt", jumpsellerID), Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	product := models.Product{
		JumpsellerID: &jumpsellerID,
		Title:        "Azulejo de Aveiro",
		Price:        14.5,
		SKU:          fmt.Sprintf("AZ-%d", jumpsellerID),
		CreatedBy:    user.ID,
		Photos: []models.ProductPhoto{
			{URL: "main.jpg", IsMain: true, Position: 1},
			{URL: "side.jpg", Position: 2},
		},
	}
	require.NoError(t, db.Create(&product).Error)

	older, newer := int64(jumpsellerID*100+1), int64(jumpsellerID*100+2)
	reviews := []models.Review{
		{ProductID: product.ID, UserID: user.ID, JumpsellerID: &older, Score: 3, ReviewerName: "rui", CreatedAt: time.Now().Add(-time.Hour)},
		{ProductID: product.ID, UserID: user.ID, JumpsellerID: &newer, Score: 5, ReviewerName: "ana", CreatedAt: time.Now()},
	}
	require.NoError(t, db.Create(&reviews).Error)
	return &product
}

type viewResponse struct {
	Data models.ProductView `json:"data"`
}

func TestGetByJumpsellerID_NotFound(t *testing.T) {
	router := newMirrorRouter(newTestDB(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/jumpseller/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByJumpsellerID_RecomputesAggregates(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 7)

	// stored aggregate columns are stale on purpose
	require.NoError(t, db.Model(product).Updates(map[string]interface{}{
		"avg_score":    1.0,
		"review_count": 99,
	}).Error)

	router := newMirrorRouter(db)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/jumpseller/7", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Azulejo de Aveiro", resp.Data.Title)
	assert.Equal(t, 4.0, resp.Data.AvgScore)
	assert.Equal(t, 2, resp.Data.ReviewCount)
	assert.Equal(t, "main.jpg", resp.Data.MainPhoto)

	// reviews come newest-first with the author snapshot
	require.Len(t, resp.Data.Reviews, 2)
	assert.Equal(t, "ana", resp.Data.Reviews[0].ReviewerName)
	assert.Equal(t, "rui", resp.Data.Reviews[1].ReviewerName)
}

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 3)

	router := newMirrorRouter(db)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/"+product.ID, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, product.ID, resp.Data.ID)
	assert.Equal(t, "Azulejo de Aveiro", resp.Data.Title)
}

func TestUpdateScore(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)
	router := newMirrorRouter(db)

	body := strings.NewReader(`{"avg_score":4.7,"review_count":12}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/"+product.ID+"/score", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var refreshed models.Product
	require.NoError(t, db.First(&refreshed, "id = ?", product.ID).Error)
	assert.Equal(t, 4.7, refreshed.AvgScore)
	assert.Equal(t, 12, refreshed.ReviewCount)
}

func TestUpdateScore_Validation(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)
	router := newMirrorRouter(db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/"+product.ID+"/score",
		strings.NewReader(`{"avg_score":9.9,"review_count":1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateScore_UnknownProduct(t *testing.T) {
	router := newMirrorRouter(newTestDB(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/nope/score",
		strings.NewReader(`{"avg_score":4.0,"review_count":1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
