package services

import (
	"fmt"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/internal/repositories"
)

// JobService queues webhook deliveries for the workers
type JobService struct {
	jobRepo *repositories.JobRepository
}

// NewJobService creates a new job service
func NewJobService(jobRepo *repositories.JobRepository) *JobService {
	return &JobService{jobRepo: jobRepo}
}

// Enqueue stores a raw webhook payload as a pending job of the given type
func (s *JobService) Enqueue(jobType models.JobType, deliveryID string, payload []byte) (*models.Job, error) {
	if _, err := EventTypeForJob(jobType); err != nil {
		return nil, err
	}

	job := models.NewJob(jobType, deliveryID, payload)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}

	enqueuedJobCounter.WithLabelValues(string(jobType)).Inc()
	return job, nil
}

// GetJobsByStatus lists jobs in the given status, oldest first
func (s *JobService) GetJobsByStatus(status models.JobStatus) ([]*models.Job, error) {
	return s.jobRepo.GetByStatus(status)
}

// CountByStatus returns the number of jobs in every status
func (s *JobService) CountByStatus() (map[models.JobStatus]int, error) {
	return s.jobRepo.CountByStatus()
}
