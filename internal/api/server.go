package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/madeinportugal/storefront/internal/api/handlers"
	"github.com/madeinportugal/storefront/internal/api/middleware"
	"github.com/madeinportugal/storefront/internal/config"
	"github.com/madeinportugal/storefront/internal/database"
	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/resolver"
	"github.com/madeinportugal/storefront/internal/services/jumpseller"
	syncpkg "github.com/madeinportugal/storefront/internal/sync"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database,
	transformer *jumpseller.Transformer, orchestrator *syncpkg.Orchestrator, rsv *resolver.Resolver) *Server {

	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(db.DB, logger)
	mirrorHandler := handlers.NewMirrorHandler(db.DB, transformer, logger)
	syncHandler := handlers.NewSyncHandler(orchestrator, logger)
	wishlistHandler := handlers.NewWishlistHandler(db.DB, logger)
	resolveHandler := handlers.NewResolveHandler(rsv, logger)

	// Routes
	api := router.Group("/api")
	{
		products := api.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.GET("/:id/reviews", productHandler.ListReviews)
			products.GET("/sku/:sku", productHandler.GetBySKU)
			products.GET("/resolve/:jumpsellerID", resolveHandler.Get)
		}

		api.POST("/sync", syncHandler.Trigger)

		wishlist := api.Group("/users/:id/wishlist")
		{
			wishlist.GET("", wishlistHandler.List)
			wishlist.POST("/:productID", wishlistHandler.Add)
			wishlist.DELETE("/:productID", wishlistHandler.Remove)
		}
	}

	// Mirror resolution endpoints, consumed by the product page as fallback
	mirror := router.Group("/products")
	{
		mirror.GET("/jumpseller/:id", mirrorHandler.GetByJumpsellerID)
		mirror.GET("/:id", mirrorHandler.GetByID)
		mirror.PUT("/:id/score", mirrorHandler.UpdateScore)
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the Gin router for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
