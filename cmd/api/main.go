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

	"github.com/civiz/civiz/internal/api"
	"github.com/civiz/civiz/internal/api/middleware"
	"github.com/civiz/civiz/internal/config"
	"github.com/civiz/civiz/internal/logger"
	"github.com/civiz/civiz/internal/service"
	"github.com/civiz/civiz/internal/storage"
	"github.com/civiz/civiz/internal/store"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.SetDefaultLogger(logger.NewFromEnv(logger.LoadFromEnv()))
	defer logger.Sync()

	// Initialize image archive (optional; generated images keep their
	// provider URLs when disabled)
	var archive *storage.ImageArchive
	if cfg.Archive.Enabled {
		objectStorage, err := storage.NewStorage(&storage.S3Config{
			Type:      storage.StorageType(cfg.Archive.Type),
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			PublicURL: cfg.Archive.PublicURL,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage: %v", err)
		}
		if err := objectStorage.EnsureBucket(context.Background()); err != nil {
			logger.Fatal("Failed to ensure storage bucket: %v", err)
		}
		archive = storage.NewImageArchive(objectStorage)
		logger.Info("Image archive enabled: bucket=%s", cfg.Archive.Bucket)
	}

	// Initialize generation gateway
	gateway := service.NewDalleGateway(&service.DalleConfig{
		Model:   cfg.Generation.Model,
		APIKey:  cfg.Generation.APIKey,
		BaseURL: cfg.Generation.BaseURL,
		Size:    cfg.Generation.Size,
		Quality: cfg.Generation.Quality,
		Timeout: cfg.Generation.Timeout(),
	}, archive)

	// Initialize street view client
	streetView := service.NewStreetViewService(&service.StreetViewConfig{
		APIKey:  cfg.StreetView.APIKey,
		BaseURL: cfg.StreetView.BaseURL,
		Size:    cfg.StreetView.Size,
		FOV:     cfg.StreetView.FOV,
		Pitch:   cfg.StreetView.Pitch,
	})

	// Initialize vision store
	visionStore := store.New(service.NewClassifier(), gateway, &store.Config{
		CurrentUserID:  cfg.Store.CurrentUserID,
		StartingPoints: cfg.Store.StartingPoints,
		SeedSamples:    cfg.Store.SeedSamples,
	})

	// Log lifecycle events as they happen
	events, unsubscribe := visionStore.Subscribe()
	defer unsubscribe()
	go func() {
		for ev := range events {
			logger.With(logger.Fields{
				logger.FieldVisionID: ev.Vision.ID,
				logger.FieldCategory: string(ev.Vision.Category),
			}).Info(context.Background(), "Vision event: type=%s, status=%s, points=%d",
				ev.Type, ev.Vision.Status, ev.Vision.Points)
		}
	}()

	// Setup router
	router := api.SetupRouter(visionStore, streetView, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
