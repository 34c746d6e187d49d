package handlers

import (
	"net/http"

	"jogapp-api/internal/scheduler"
	"jogapp-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// JobHandler exposes manual job triggers and scheduler introspection.
// Jobs are idempotent, so an operator trigger composes safely with the
// regular ticks.
type JobHandler struct {
	scheduler scheduler.Scheduler
	logger    *logger.Logger
}

func NewJobHandler(sched scheduler.Scheduler, logger *logger.Logger) *JobHandler {
	return &JobHandler{
		scheduler: sched,
		logger:    logger,
	}
}

// Run handles POST /jobs/:name/run
func (h *JobHandler) Run(c *gin.Context) {
	name := c.Param("name")
	if err := h.scheduler.RunJob(c.Request.Context(), name); err != nil {
		if schedErr, ok := err.(scheduler.SchedulerError); ok && schedErr.Code() == scheduler.ErrUnknownJob {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Manual job run failed", "job", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed", "job": name})
}

// List handles GET /jobs
func (h *JobHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"jobs":    h.scheduler.JobNames(),
		"running": h.scheduler.IsRunning(),
	})
}

// Metrics handles GET /jobs/metrics
func (h *JobHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.GetMetrics().GetMetricsSummary())
}
