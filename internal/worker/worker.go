package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/madeinportugal/storefront/internal/config"
	"github.com/madeinportugal/storefront/internal/logger"
	syncpkg "github.com/madeinportugal/storefront/internal/sync"

	"github.com/segmentio/kafka-go"
)

// EventTypeSyncRequested triggers a full sync run.
const EventTypeSyncRequested = "sync.requested"

// Event is the queue message envelope.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Worker consumes sync events from Kafka and dispatches them to the
// orchestrator.
type Worker struct {
	config       *config.Config
	logger       *logger.Logger
	reader       *kafka.Reader
	orchestrator *syncpkg.Orchestrator
}

func New(cfg *config.Config, logger *logger.Logger, orchestrator *syncpkg.Orchestrator) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "storefront-worker",
		Topic:          cfg.SyncTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:       cfg,
		logger:       logger,
		reader:       reader,
		orchestrator: orchestrator,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for sync events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var event Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		w.process(event)
	}
}

func (w *Worker) process(event Event) {
	switch event.Type {
	case EventTypeSyncRequested:
		result := w.orchestrator.Run(context.Background())
		if result.Err != nil {
			w.logger.Error("Sync run failed: %v", result.Err)
			return
		}
		w.logger.Info("Sync run done: %d created, %d updated, %d reviews created, %d skipped",
			result.ProductsCreated, result.ProductsUpdated, result.ReviewsCreated, result.ReviewsSkipped)
	default:
		w.logger.Debug("Unhandled event type: %s", event.Type)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
