package handlers

import (
	"net/http"
	"time"

	"jogapp-api/internal/database"
	"jogapp-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type HealthHandler struct {
	client *mongo.Client
	logger *logger.Logger
}

func NewHealthHandler(client *mongo.Client, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		client: client,
		logger: logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	statusCode := http.StatusOK

	if err := database.HealthCheck(c.Request.Context(), h.client); err != nil {
		h.logger.Error("Database health check failed", "error", err)
		status = "error"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "jogapp-api",
	})
}
