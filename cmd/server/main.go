// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/api"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/client"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/drive"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/engine"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/report"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/service"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/speech"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/storage"
	"github.com/andresuchdata/scenario-planner/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	simClient := client.NewSimulationClient(cfg.Simulation.BaseURL, cfg.Simulation.Timeout())
	registry := engine.NewRegistry(engine.Options{
		Client:  simClient,
		Speaker: speech.New(cfg.Speech),
		Lang:    cfg.Speech.Lang,
	})

	opts := service.Options{Chart: report.PDFChart{}}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		runRepo := postgres.NewRunRepository(db)
		if err := runRepo.EnsureSchema(ctx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to prepare run history schema")
		}
		opts.Runs = runRepo
		logger.Log.Info().Str("db", cfg.Database.DBName).Msg("Run history enabled")
	}

	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(ctx, cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, s3 exports disabled")
		} else {
			opts.Storage = store
		}
	}

	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Google Drive unavailable, drive exports disabled")
		} else {
			opts.Drive = driveService
			opts.DriveFolderID = cfg.Drive.FolderID
		}
	}

	scenarioService := service.NewScenarioService(registry, opts)
	router := api.NewRouter(&api.Services{ScenarioService: scenarioService}, cfg.Server.AllowedOrigins)

	// Initialize HTTP server. The write timeout must outlast a slow simulation run.
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("simulation", cfg.Simulation.BaseURL).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
