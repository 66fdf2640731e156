package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ManagerConfig sets how many workers run per job type
type ManagerConfig struct {
	PullRequestWorkers  int
	IssueCommentWorkers int
	PollInterval        time.Duration
}

// WorkerManager manages multiple workers of different types
type WorkerManager struct {
	workers    []Worker
	jobQueue   JobQueue
	reconciler Reconciler
	config     ManagerConfig
	group      *errgroup.Group
	cancel     context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(jobQueue JobQueue, reconciler Reconciler, config ManagerConfig) *WorkerManager {
	return &WorkerManager{
		workers:    make([]Worker, 0),
		jobQueue:   jobQueue,
		reconciler: reconciler,
		config:     config,
	}
}

// StartAll starts the configured number of workers for every job type
func (wm *WorkerManager) StartAll(ctx context.Context) error {
	if wm.group != nil {
		return fmt.Errorf("workers already started")
	}

	ctx, wm.cancel = context.WithCancel(ctx)
	wm.group, ctx = errgroup.WithContext(ctx)

	logger.Infof("Starting workers - PullRequest: %d, IssueComment: %d",
		wm.config.PullRequestWorkers, wm.config.IssueCommentWorkers)

	wm.startWorkers(ctx, models.JobTypePullRequestEvent, "pull-request", wm.config.PullRequestWorkers)
	wm.startWorkers(ctx, models.JobTypeIssueCommentEvent, "issue-comment", wm.config.IssueCommentWorkers)

	logger.Infof("Started %d total workers", len(wm.workers))
	return nil
}

func (wm *WorkerManager) startWorkers(ctx context.Context, jobType models.JobType, prefix string, count int) {
	for i := 0; i < count; i++ {
		worker := NewEventWorker(fmt.Sprintf("%s-%d", prefix, i+1), jobType, wm.jobQueue, wm.reconciler, wm.config.PollInterval)
		wm.workers = append(wm.workers, worker)
		wm.group.Go(func() error {
			return worker.Start(ctx)
		})
	}
}

// StopAll gracefully stops all workers and waits for in-flight jobs
func (wm *WorkerManager) StopAll() error {
	if wm.group == nil {
		return nil
	}

	logger.Infof("Stopping all workers...")
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.Errorf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}

	err := wm.group.Wait()
	wm.group = nil

	logger.Infof("All workers stopped")
	return err
}

// GetWorkerStatus returns whether each worker is running
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool, len(wm.workers))
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
