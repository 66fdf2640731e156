package models

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	JobTypePullRequestEvent  JobType = "pull_request_event"
	JobTypeIssueCommentEvent JobType = "issue_comment_event"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is a queued webhook delivery waiting to be reconciled
type Job struct {
	ID           string     `json:"id"`
	JobType      JobType    `json:"job_type"`
	Status       JobStatus  `json:"status"`
	DeliveryID   string     `json:"delivery_id"`
	Payload      []byte     `json:"-"`
	ErrorMessage *string    `json:"error_message"`
	WorkerID     *string    `json:"worker_id"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewJob creates a new Job with a generated UUID
func NewJob(jobType JobType, deliveryID string, payload []byte) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:         uuid.New().String(),
		JobType:    jobType,
		Status:     JobStatusPending,
		DeliveryID: deliveryID,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsPending checks if the job is pending
func (j *Job) IsPending() bool {
	return j.Status == JobStatusPending
}

// IsCompleted checks if the job is completed
func (j *Job) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsFailed checks if the job is failed
func (j *Job) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// MarkStarted marks the job as started by the given worker
func (j *Job) MarkStarted(workerID string) {
	now := time.Now().UTC()
	j.Status = JobStatusInProgress
	j.StartedAt = &now
	j.WorkerID = &workerID
}

// MarkCompleted marks the job as completed
func (j *Job) MarkCompleted() {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
}

// MarkFailed marks the job as failed and records the error message
func (j *Job) MarkFailed(err error) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	if err != nil {
		message := err.Error()
		j.ErrorMessage = &message
	}
}
