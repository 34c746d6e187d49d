package handlers

import (
	"net/http"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/planner"
	"jogapp-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PlanHandler exposes AI day planning over HTTP
type PlanHandler struct {
	service planner.PlanService
	logger  *logger.Logger
}

func NewPlanHandler(service planner.PlanService, logger *logger.Logger) *PlanHandler {
	return &PlanHandler{
		service: service,
		logger:  logger,
	}
}

// PlanDayRequest is the payload for generating a day plan
type PlanDayRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	Date        string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// PlanDay handles POST /plans
func (h *PlanHandler) PlanDay(c *gin.Context) {
	var req PlanDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(common.DayKeyFormat, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = parsed
	}

	created, err := h.service.PlanDay(c.Request.Context(), common.UserID(req.UserID), req.Description, date)
	if err != nil {
		if jog.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Day planning failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "plan generation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"jogs": created, "count": len(created)})
}
