package routes

import (
	"jogapp-api/api/handlers"
	"jogapp-api/api/middleware"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/planner"
	"jogapp-api/internal/scheduler"
	"jogapp-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupRoutes(router *gin.Engine, client *mongo.Client, logger *logger.Logger, jogService jog.JogService, planService planner.PlanService, sched scheduler.Scheduler) {
	// Add middleware
	router.Use(middleware.RequestLogging(logger))
	router.Use(gin.Recovery())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(client, logger)
	jogHandler := handlers.NewJogHandler(jogService, logger)
	planHandler := handlers.NewPlanHandler(planService, logger)
	jobHandler := handlers.NewJobHandler(sched, logger)

	// Setup routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)

		v1.POST("/jogs", jogHandler.Create)
		v1.GET("/users/:userId/jogs", jogHandler.List)
		v1.POST("/jogs/:id/complete", jogHandler.Complete)
		v1.POST("/jogs/:id/steps/:stepId/complete", jogHandler.CompleteStep)
		v1.DELETE("/jogs/:id", jogHandler.Delete)

		v1.POST("/plans", planHandler.PlanDay)

		v1.GET("/jobs", jobHandler.List)
		v1.POST("/jobs/:name/run", jobHandler.Run)
		v1.GET("/jobs/metrics", jobHandler.Metrics)
	}

	// Root health check
	router.GET("/health", healthHandler.Check)
}
