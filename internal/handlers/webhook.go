package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/internal/services"
	"github.com/alimgiray/reviewgate/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// JobEnqueuer queues webhook payloads for the workers
type JobEnqueuer interface {
	Enqueue(jobType models.JobType, deliveryID string, payload []byte) (*models.Job, error)
}

type WebhookHandler struct {
	jobs JobEnqueuer
}

func NewWebhookHandler(jobs JobEnqueuer) *WebhookHandler {
	return &WebhookHandler{jobs: jobs}
}

// PullRequest accepts pull_request deliveries. Only actions that can change
// the review state are queued, everything else is acknowledged and dropped.
func (h *WebhookHandler) PullRequest(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	h.handlePullRequest(c, payload)
}

// IssueComment accepts issue_comment deliveries
func (h *WebhookHandler) IssueComment(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	h.enqueue(c, models.JobTypeIssueCommentEvent, payload)
}

// GitHub accepts any delivery and dispatches on the X-GitHub-Event header
func (h *WebhookHandler) GitHub(c *gin.Context) {
	eventType := github.WebHookType(c.Request)
	if eventType == services.GitHubEventPing {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
		return
	}

	payload, ok := readPayload(c)
	if !ok {
		return
	}

	switch eventType {
	case services.GitHubEventPullRequest:
		h.handlePullRequest(c, payload)
	case services.GitHubEventIssueComment:
		h.enqueue(c, models.JobTypeIssueCommentEvent, payload)
	default:
		logger.WithField("event", eventType).Debug("Ignoring webhook event")
		c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
	}
}

func (h *WebhookHandler) handlePullRequest(c *gin.Context, payload []byte) {
	var event github.PullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pull_request payload"})
		return
	}

	switch event.GetAction() {
	case "opened", "synchronize":
		h.enqueue(c, models.JobTypePullRequestEvent, payload)
	default:
		c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
	}
}

func (h *WebhookHandler) enqueue(c *gin.Context, jobType models.JobType, payload []byte) {
	deliveryID := github.DeliveryID(c.Request)

	job, err := h.jobs.Enqueue(jobType, deliveryID, payload)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"job_type":    jobType,
			"delivery_id": deliveryID,
		}).Error("Failed to enqueue webhook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue webhook"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "job_id": job.ID})
}

// readPayload reads the request body and rejects anything that is not JSON
func readPayload(c *gin.Context) ([]byte, bool) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return nil, false
	}
	if !json.Valid(payload) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON"})
		return nil, false
	}
	return payload, true
}
