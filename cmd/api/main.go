package main

import (
	"context"
	"log"
	"time"

	"github.com/madeinportugal/storefront/internal/api"
	"github.com/madeinportugal/storefront/internal/config"
	"github.com/madeinportugal/storefront/internal/database"
	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/resolver"
	"github.com/madeinportugal/storefront/internal/services/jumpseller"
	syncpkg "github.com/madeinportugal/storefront/internal/sync"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Upstream client and transformer are constructed once and injected
	client := jumpseller.NewClient(cfg.JumpsellerAPIURL, cfg.JumpsellerLogin, cfg.JumpsellerAuthToken, logger)
	transformer := jumpseller.NewTransformer()
	orchestrator := syncpkg.New(db.DB, client, transformer, logger)
	pusher := resolver.NewAggregatePusher(db.DB, resolver.DefaultPushDelay, logger)
	rsv := resolver.New(db.DB, client, transformer, pusher, logger)

	// Initialize API server
	server := api.New(cfg, logger, db, transformer, orchestrator, rsv)

	// Startup and interval sync triggers
	if cfg.SyncOnStart {
		go func() {
			logger.Info("Running startup sync...")
			if result := orchestrator.Run(context.Background()); result.Err != nil {
				logger.Error("Startup sync failed: %v", result.Err)
			}
		}()
	}
	if cfg.SyncIntervalMinutes > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.SyncIntervalMinutes) * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				if result := orchestrator.Run(context.Background()); result.Err != nil {
					logger.Error("Scheduled sync failed: %v", result.Err)
				}
			}
		}()
	}

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
