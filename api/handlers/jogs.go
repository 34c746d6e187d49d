package handlers

import (
	"net/http"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"
	"jogapp-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// JogHandler exposes the jog lifecycle over HTTP
type JogHandler struct {
	service jog.JogService
	logger  *logger.Logger
}

func NewJogHandler(service jog.JogService, logger *logger.Logger) *JogHandler {
	return &JogHandler{
		service: service,
		logger:  logger,
	}
}

// CreateJogRequest is the payload for creating a jog
type CreateJogRequest struct {
	UserID          string              `json:"user_id" binding:"required"`
	Title           string              `json:"title" binding:"required,max=255"`
	Category        string              `json:"category"`
	DueDate         time.Time           `json:"due_date" binding:"required"`
	ReminderOffsets []int               `json:"reminder_offsets" binding:"omitempty,dive,oneof=5 10 15 30 60"`
	IsStepBased     bool                `json:"is_step_based"`
	Steps           []CreateStepRequest `json:"steps" binding:"omitempty,dive"`
}

// CreateStepRequest is one step in a step-based jog payload
type CreateStepRequest struct {
	Title   string    `json:"title" binding:"required,max=255"`
	DueDate time.Time `json:"due_date" binding:"required"`
}

// Create handles POST /jogs
func (h *JogHandler) Create(c *gin.Context) {
	var req CreateJogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	j := &jog.Jog{
		UserID:      common.UserID(req.UserID),
		Title:       req.Title,
		Category:    req.Category,
		DueDate:     req.DueDate,
		IsStepBased: req.IsStepBased,
	}
	if len(req.ReminderOffsets) > 0 {
		j.ReminderEnabled = true
		j.ReminderIntervals = []jog.IntervalGroup{jog.NewIntervalGroup(req.ReminderOffsets)}
	}
	for _, step := range req.Steps {
		j.Steps = append(j.Steps, jog.Step{
			Title:   step.Title,
			DueDate: step.DueDate,
		})
	}

	if err := h.service.CreateJog(c.Request.Context(), j); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, j)
}

// List handles GET /users/:userId/jogs
func (h *JogHandler) List(c *gin.Context) {
	userID := common.UserID(c.Param("userId"))

	filter := jog.JogFilter{}
	if status := c.Query("status"); status != "" {
		s := common.CompleteStatus(status)
		filter.Status = &s
	}

	jogs, err := h.service.GetJogs(c.Request.Context(), userID, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jogs": jogs, "count": len(jogs)})
}

// Complete handles POST /jogs/:id/complete
func (h *JogHandler) Complete(c *gin.Context) {
	jogID := common.JogID(c.Param("id"))
	if err := h.service.CompleteJog(c.Request.Context(), jogID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// CompleteStep handles POST /jogs/:id/steps/:stepId/complete
func (h *JogHandler) CompleteStep(c *gin.Context) {
	jogID := common.JogID(c.Param("id"))
	stepID := common.StepID(c.Param("stepId"))
	if err := h.service.CompleteStep(c.Request.Context(), jogID, stepID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// Delete handles DELETE /jogs/:id
func (h *JogHandler) Delete(c *gin.Context) {
	jogID := common.JogID(c.Param("id"))
	if err := h.service.DeleteJog(c.Request.Context(), jogID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// respondError maps domain errors onto HTTP status codes
func (h *JogHandler) respondError(c *gin.Context, err error) {
	switch {
	case jog.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case jog.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case jog.IsBusinessRuleError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Unhandled jog error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
