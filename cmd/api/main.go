package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grant-simulation/internal/api/handlers"
	"grant-simulation/internal/api/middleware"
	"grant-simulation/internal/config"
	"grant-simulation/internal/data"
	"grant-simulation/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	cfg := config.Default()
	if path := os.Getenv("SIM_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("API: loading config failed")
		}
		cfg = loaded
	}
	logger := logging.Setup(cfg.Log.Level, logging.FormatJSON)

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := data.NewRunCacheFromEnv()
	go cache.Cleanup(ctx, 5*time.Minute)

	// Initialize handlers
	simulationHandler := handlers.NewSimulationHandler(cfg, cache, logger)
	schemaHandler := handlers.NewSchemaHandler()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cached_runs": cache.Len()})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/schema", schemaHandler.GetSchema)
		api.GET("/policies", schemaHandler.ListPolicies)

		api.POST("/simulations", simulationHandler.RunSimulation)
		api.GET("/simulations/:id/table", simulationHandler.GetTable)
		api.GET("/simulations/:id/coverage", simulationHandler.GetCoverage)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("API: shutdown failed")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Int("iterations", cfg.Simulation.Iterations).Msg("API: starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("API: server failed")
	}
}
