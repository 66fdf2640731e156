package handlers

import (
	"net/http"
	"time"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// JobStats reports the state of the job queue
type JobStats interface {
	CountByStatus() (map[models.JobStatus]int, error)
	GetJobsByStatus(status models.JobStatus) ([]*models.Job, error)
}

type HealthHandler struct {
	jobs JobStats
}

func NewHealthHandler(jobs JobStats) *HealthHandler {
	return &HealthHandler{jobs: jobs}
}

// HealthCheck reports service liveness, job queue counts and the oldest
// pending job
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	counts, err := h.jobs.CountByStatus()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	pending, err := h.jobs.GetJobsByStatus(models.JobStatusPending)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	now := time.Now().UTC()
	response := gin.H{
		"status":    "ok",
		"jobs":      counts,
		"timestamp": now.Format(time.RFC3339),
	}

	// a growing backlog age means the workers are stuck or not running
	if len(pending) > 0 {
		oldest := pending[0]
		response["oldest_pending_job"] = gin.H{
			"id":          oldest.ID,
			"job_type":    oldest.JobType,
			"created_at":  oldest.CreatedAt.Format(time.RFC3339),
			"age_seconds": int(now.Sub(oldest.CreatedAt).Seconds()),
		}
	}

	c.JSON(http.StatusOK, response)
}

// Metrics exposes Prometheus metrics
func (h *HealthHandler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
