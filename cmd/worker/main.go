package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/madeinportugal/storefront/internal/config"
	"github.com/madeinportugal/storefront/internal/database"
	"github.com/madeinportugal/storefront/internal/logger"
	"github.com/madeinportugal/storefront/internal/services/jumpseller"
	syncpkg "github.com/madeinportugal/storefront/internal/sync"
	"github.com/madeinportugal/storefront/internal/worker"
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

	client := jumpseller.NewClient(cfg.JumpsellerAPIURL, cfg.JumpsellerLogin, cfg.JumpsellerAuthToken, logger)
	orchestrator := syncpkg.New(db.DB, client, jumpseller.NewTransformer(), logger)

	// Initialize worker
	w := worker.New(cfg, logger, orchestrator)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
