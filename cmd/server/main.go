package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jogapp-api/api/routes"
	"jogapp-api/internal/common"
	"jogapp-api/internal/config"
	"jogapp-api/internal/database"
	"jogapp-api/internal/events"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/notification"
	"jogapp-api/internal/planner"
	"jogapp-api/internal/scheduler"
	"jogapp-api/internal/stats"
	"jogapp-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.Server.Environment)
	defer logger.Sync()

	// Get the underlying zap logger for services
	zapLogger := logger.SugaredLogger.Desugar()

	// Resolve the canonical timezone for day boundaries
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("Invalid scheduler timezone", "timezone", cfg.Scheduler.Timezone, "error", err)
	}

	// Initialize database
	connectCtx, connectCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Database.MaxConnectRetryTime)*time.Second)
	client, err := database.NewMongoConnection(connectCtx, cfg.Database)
	connectCancel()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	clock := common.NewRealClock()

	// Initialize event bus
	eventBus := events.NewEventBus(zapLogger)

	// Initialize repositories and services
	jogCollection, statsCollection := database.Collections(client, cfg.Database)
	jogRepository := jog.NewMongoJogRepository(jogCollection, zapLogger)
	statsRepository := stats.NewMongoStatsRepository(statsCollection, clock, zapLogger)
	jogService := jog.NewJogService(jogRepository, statsRepository, eventBus, clock, location, zapLogger)
	planProvider := planner.NewHTTPPlanProvider(cfg.Planner, zapLogger)
	planService := planner.NewPlanService(planProvider, jogService, eventBus, location, zapLogger)
	dispatcher := notification.NewPushProvider(cfg.Notifier, zapLogger)

	// Bridge store changes onto the event bus for reactive recomputation
	var watcher *jog.ChangeWatcher
	if cfg.Database.ChangeStreamsEnabled {
		watcher = jog.NewChangeWatcher(jogRepository, eventBus, zapLogger)
		if err := watcher.Start(context.Background()); err != nil {
			logger.Error("Failed to start jog change watcher, continuing without reactive recomputation", "error", err)
			watcher = nil
		}
	}

	// Initialize scheduler
	metrics := scheduler.NewSchedulerMetrics()
	deps := &scheduler.JobDeps{
		Jogs:       jogRepository,
		JogService: jogService,
		Stats:      statsRepository,
		Dispatcher: dispatcher,
		EventBus:   eventBus,
		Metrics:    metrics,
		Location:   location,
		Logger:     zapLogger,
	}
	jobs, err := scheduler.DefaultJobs(cfg.Scheduler, deps)
	if err != nil {
		logger.Fatal("Failed to build scheduled jobs", "error", err)
	}
	jobScheduler, err := scheduler.NewScheduler(cfg.Scheduler, jobs, clock, metrics, zapLogger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", "error", err)
	}

	if cfg.Scheduler.Enabled {
		if err := jobScheduler.Start(context.Background()); err != nil {
			logger.Fatal("Scheduler failed to start", "error", err)
		}
		logger.Info("Job scheduler started",
			"sweep_interval", cfg.Scheduler.SweepInterval,
			"timezone", cfg.Scheduler.Timezone,
			"jobs", jobScheduler.JobNames())
	} else {
		logger.Info("Job scheduler disabled")
	}

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, client, logger, jogService, planService, jobScheduler)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop scheduler first so no new sweeps start mid-shutdown
	if cfg.Scheduler.Enabled && jobScheduler.IsRunning() {
		if err := jobScheduler.Stop(); err != nil {
			logger.Error("Failed to stop scheduler gracefully", "error", err)
		}
	}

	if watcher != nil {
		watcher.Stop()
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	if err := client.Disconnect(ctx); err != nil {
		logger.Error("Failed to disconnect from database", "error", err)
	}

	logger.Info("Server exited")
}
