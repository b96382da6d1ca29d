package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opdpulse/opdpulse/internal/analytics/anomaly"
	"github.com/opdpulse/opdpulse/internal/analytics/predict"
	"github.com/opdpulse/opdpulse/internal/config"
	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/router"
	"github.com/opdpulse/opdpulse/internal/services"
	"github.com/opdpulse/opdpulse/internal/storage"
	"github.com/opdpulse/opdpulse/internal/subscriber"
	"github.com/opdpulse/opdpulse/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("OPDPulse server starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Stores and snapshot archive
	snapshots := storage.NewSnapshotStore(logger)
	alerts := storage.NewAlertStore(logger)
	archive := storage.NewArchive(cfg.ArchivePath(), logger)

	if restored, err := archive.Load(); err != nil {
		logger.Error("Failed to load snapshot archive", "error", err, "path", cfg.ArchivePath())
	} else if len(restored) > 0 {
		snapshots.Restore(restored)
		logger.Info("Snapshot archive restored", "count", len(restored))
	}

	// Analytics
	detector := anomaly.NewDetector(logger, snapshots, alerts, anomaly.Config{
		WindowSize:     cfg.Detector.WindowSize,
		MinSnapshots:   cfg.Detector.MinSnapshots,
		SurgeZScore:    cfg.Detector.SurgeZScore,
		GrowthMinDelta: cfg.Detector.GrowthMinDelta,
		Cooldown:       cfg.Detector.AlertCooldown,
	})

	predictor := predict.NewPredictor(logger, snapshots, predict.Config{
		Trees:           cfg.Predictor.Trees,
		MaxDepth:        cfg.Predictor.MaxDepth,
		Seed:            int64(cfg.Predictor.Seed),
		ForecastHours:   cfg.Predictor.ForecastHours,
		AssumedDoctors:  cfg.Predictor.AssumedDoctors,
		MinutesPerVisit: cfg.Predictor.MinutesPerVisit,
	})

	if trained, err := predictor.Train(); err != nil {
		logger.Error("Initial predictor training failed", "error", err)
	} else if trained {
		logger.Info("Predictor trained from restored history", "snapshots", snapshots.Count())
	}

	// Services
	queueService := services.NewQueueService(logger, snapshots, alerts, detector, predictor, archive)
	predictionService := services.NewPredictionService(logger, snapshots, predictor, cfg.Departments)

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	// Initialize router
	app := router.New(logger, queueService, predictionService, *cfg)

	// Create context for background services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Queue-based ingestion (optional)
	var sub subscriber.Subscriber
	if cfg.Queue.Enabled {
		logger.Info("Connecting to queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
		sub, err = subscriber.NewSubscriber(cfg.Queue, subscriber.DefaultConfig())
		if err != nil {
			logger.Fatal("Failed to connect to queue", "error", err)
		}
		defer func() { _ = sub.Close() }()

		handler := func(msgCtx context.Context, subject string, data []byte) error {
			var req models.SnapshotUpdateRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("failed to decode snapshot message: %w", err)
			}

			ingestCtx, ingestCancel := context.WithTimeout(msgCtx, utils.IngestTimeout)
			defer ingestCancel()

			_, err := queueService.Ingest(ingestCtx, &req)
			return err
		}

		if err := sub.Subscribe(ctx, cfg.Queue.Subject, handler); err != nil {
			logger.Fatal("Failed to subscribe to snapshot subject", "error", err, "subject", cfg.Queue.Subject)
		}
		logger.Info("Queue ingestion started", "subject", cfg.Queue.Subject)
	}

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Persist the snapshot history for the next start
	if all, err := snapshots.All(); err == nil {
		if err := archive.Save(all); err != nil {
			logger.Error("Failed to save snapshot archive", "error", err)
		} else {
			logger.Info("Snapshot archive saved", "count", len(all))
		}
	}

	logger.Info("Server exited")
}
