package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/api"
	"github.com/brandpulse/reputation-monitor/internal/config"
	"github.com/brandpulse/reputation-monitor/internal/engine"
	"github.com/brandpulse/reputation-monitor/internal/notifications"
	"github.com/brandpulse/reputation-monitor/internal/samples"
	"github.com/brandpulse/reputation-monitor/internal/scheduler"
	"github.com/brandpulse/reputation-monitor/internal/sentiment"
	"github.com/brandpulse/reputation-monitor/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Brand Reputation Monitor")

	// Load the sentiment lexicon
	lexicon, err := loadLexicon(cfg)
	if err != nil {
		logrus.Fatalf("Failed to load sentiment lexicon: %v", err)
	}
	logrus.Infof("Loaded sentiment lexicon %q (%d words)", lexicon.Version, lexicon.Len())
	analyzer := sentiment.NewAnalyzer(lexicon)

	// Initialize storage
	store, closeStore, err := openStore(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	// Initialize notification service
	notifier := notifications.NewService(cfg)

	// Initialize the ingestion and alerting engine
	engineService := engine.NewService(store, analyzer, notifier, time.Duration(cfg.ResponseSLAMinutes)*time.Minute)

	// Initialize the archive exporter if configured
	var archiver storage.Archiver
	if cfg.ArchiveEnabled {
		blobArchiver, err := storage.NewBlobArchiver(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize archive storage: %v", err)
		}
		archiver = blobArchiver
	}

	// Start the scheduler
	schedulerService := scheduler.NewService(engineService, archiver)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up the HTTP API
	sampler := samples.NewGenerator(store, engineService, time.Now().UnixNano())
	handler := api.NewHandler(store, engineService, sampler)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func loadLexicon(cfg *config.Config) (*sentiment.Lexicon, error) {
	if cfg.LexiconPath == "" {
		return sentiment.DefaultLexicon()
	}
	data, err := os.ReadFile(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", cfg.LexiconPath, err)
	}
	return sentiment.ParseLexicon(data)
}

func openStore(cfg *config.Config) (storage.Store, func(), error) {
	if cfg.StorageBackend == config.BackendMemory {
		logrus.Warn("Using in-memory storage; data will not survive restarts")
		return storage.NewMemoryStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoStore, err := storage.NewMongoStore(ctx, cfg.MongoURL, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := mongoStore.Close(closeCtx); err != nil {
			logrus.Errorf("Failed to close MongoDB connection: %v", err)
		}
	}
	return mongoStore, closeStore, nil
}
