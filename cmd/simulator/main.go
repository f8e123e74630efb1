// backend-go/cmd/simulator/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/cache"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/config"
	"github.com/andresuchdata/scenario-planner/backend-go/internal/simulation"
	"github.com/andresuchdata/scenario-planner/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	simCache, err := cache.NewSimulationCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Simulation cache unavailable, running uncached")
		simCache = cache.NewNoopSimulationCache()
	}
	// cached responses may come from a run with different simulator settings
	if err := simCache.InvalidateAll(context.Background()); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to clear simulation cache")
	}

	simulator := simulation.NewSimulator(simulation.Options{
		Runs:    cfg.Simulator.Runs,
		Horizon: cfg.Simulator.Horizon,
		Workers: cfg.Simulator.Workers,
		Seed:    cfg.Simulator.Seed,
	})

	// Create router
	r := mux.NewRouter()
	r.Use(simulation.CORS(cfg.Simulator.AllowedOrigins))

	handler := simulation.NewHandler(simulator, simCache, cfg.Simulator.MaxConcurrent)
	handler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Simulator.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("addr", addr).
			Int("runs", cfg.Simulator.Runs).
			Int("workers", cfg.Simulator.Workers).
			Msg("Simulation backend starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start simulation backend")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Simulation backend forced to shutdown")
	}
	logger.Log.Info().Msg("Simulation backend exiting")
}
