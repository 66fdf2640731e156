package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/internal/services"
	"github.com/alimgiray/reviewgate/pkg/logger"
	"github.com/sirupsen/logrus"
)

// JobQueue is the part of the job store a worker needs
type JobQueue interface {
	GetNextPendingJob(jobType models.JobType, workerID string) (*models.Job, error)
	Update(job *models.Job) error
}

type Reconciler interface {
	Reconcile(ctx context.Context, event models.Event) error
}

// EventWorker claims queued webhook deliveries of one job type and reconciles
// them one at a time. Failed jobs are marked failed and never retried.
type EventWorker struct {
	*BaseWorker
	jobQueue     JobQueue
	reconciler   Reconciler
	pollInterval time.Duration
}

func NewEventWorker(workerID string, jobType models.JobType, jobQueue JobQueue, reconciler Reconciler, pollInterval time.Duration) *EventWorker {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &EventWorker{
		BaseWorker:   NewBaseWorker(workerID, jobType),
		jobQueue:     jobQueue,
		reconciler:   reconciler,
		pollInterval: pollInterval,
	}
}

// Start begins the worker process
func (w *EventWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)

	log := logger.WithFields(logrus.Fields{"worker": w.WorkerID, "job_type": w.JobType})
	log.Info("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Worker stopping due to context cancellation")
			return nil
		case <-w.StopChan:
			log.Info("Worker stopping")
			return nil
		default:
		}

		processed, err := w.ProcessNext(ctx)
		if err != nil {
			log.WithError(err).Error("Error processing job")
		}
		if processed && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
		case <-w.StopChan:
		case <-time.After(w.pollInterval):
		}
	}
}

// ProcessNext claims and handles one pending job. It reports false when the
// queue is empty.
func (w *EventWorker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.jobQueue.GetNextPendingJob(w.JobType, w.WorkerID)
	if err != nil {
		return false, fmt.Errorf("failed to claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	return true, w.processJob(ctx, job)
}

func (w *EventWorker) processJob(ctx context.Context, job *models.Job) error {
	log := logger.WithFields(logrus.Fields{
		"worker":      w.WorkerID,
		"job_id":      job.ID,
		"delivery_id": job.DeliveryID,
	})
	log.Debug("Processing job")

	if err := w.handle(ctx, job); err != nil {
		log.WithError(err).Warn("Job failed")
		job.MarkFailed(err)
		services.JobCounter.WithLabelValues(string(job.JobType), string(models.JobStatusFailed)).Inc()
		if updateErr := w.jobQueue.Update(job); updateErr != nil {
			return fmt.Errorf("failed to mark job %s as failed: %w", job.ID, errors.Join(err, updateErr))
		}
		return nil
	}

	job.MarkCompleted()
	services.JobCounter.WithLabelValues(string(job.JobType), string(models.JobStatusCompleted)).Inc()
	if err := w.jobQueue.Update(job); err != nil {
		return fmt.Errorf("failed to mark job %s as completed: %w", job.ID, err)
	}

	log.Info("Job completed")
	return nil
}

func (w *EventWorker) handle(ctx context.Context, job *models.Job) error {
	event, err := services.DecodeJob(job)
	if err != nil {
		return err
	}
	return w.reconciler.Reconcile(ctx, event)
}
