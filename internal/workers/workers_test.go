package workers

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/internal/repositories"
	"github.com/alimgiray/reviewgate/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openedPayload = `{"action":"opened","number":7,"pull_request":{"number":7,"body":"- [ ] @aergonaut","head":{"sha":"abc123"},"base":{"repo":{"full_name":"octo/widgets"}}}}`

type recordingReconciler struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (r *recordingReconciler) Reconcile(ctx context.Context, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingReconciler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newJobRepo(t *testing.T) *repositories.JobRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "reviewgate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repositories.NewJobRepository(db)
}

func enqueue(t *testing.T, jobRepo *repositories.JobRepository, jobType models.JobType, payload string) *models.Job {
	t.Helper()
	job := models.NewJob(jobType, "delivery", []byte(payload))
	require.NoError(t, jobRepo.Create(job))
	return job
}

func TestEventWorkerProcessNextCompletesJob(t *testing.T) {
	jobRepo := newJobRepo(t)
	reconciler := &recordingReconciler{}
	job := enqueue(t, jobRepo, models.JobTypePullRequestEvent, openedPayload)

	worker := NewEventWorker("pull-request-1", models.JobTypePullRequestEvent, jobRepo, reconciler, time.Millisecond)

	processed, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	require.Len(t, reconciler.events, 1)
	assert.Equal(t, models.OpenedEvent{
		PullRequest: models.PullRequestKey{Repository: "octo/widgets", Number: 7},
		Body:        "- [ ] @aergonaut",
		HeadSHA:     "abc123",
	}, reconciler.events[0])

	stored, err := jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	require.NotNil(t, stored.WorkerID)
	assert.Equal(t, "pull-request-1", *stored.WorkerID)

	processed, err = worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed, "queue is empty")
}

func TestEventWorkerMarksFailedJobs(t *testing.T) {
	jobRepo := newJobRepo(t)
	reconciler := &recordingReconciler{err: errors.New("status rejected")}
	job := enqueue(t, jobRepo, models.JobTypePullRequestEvent, openedPayload)

	worker := NewEventWorker("pull-request-1", models.JobTypePullRequestEvent, jobRepo, reconciler, time.Millisecond)

	processed, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	stored, err := jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsFailed())
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "status rejected", *stored.ErrorMessage)
}

func TestEventWorkerMarksUndecodableJobsFailed(t *testing.T) {
	jobRepo := newJobRepo(t)
	reconciler := &recordingReconciler{}
	job := enqueue(t, jobRepo, models.JobTypeIssueCommentEvent, `{"issue":`)

	worker := NewEventWorker("issue-comment-1", models.JobTypeIssueCommentEvent, jobRepo, reconciler, time.Millisecond)

	_, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)

	stored, err := jobRepo.GetByID(job.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsFailed())
	assert.Zero(t, reconciler.count())
}

func TestEventWorkerOnlyClaimsItsJobType(t *testing.T) {
	jobRepo := newJobRepo(t)
	enqueue(t, jobRepo, models.JobTypeIssueCommentEvent, `{}`)

	worker := NewEventWorker("pull-request-1", models.JobTypePullRequestEvent, jobRepo, &recordingReconciler{}, time.Millisecond)

	processed, err := worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestBaseWorkerStopIsIdempotent(t *testing.T) {
	worker := NewBaseWorker("w", models.JobTypePullRequestEvent)
	require.NoError(t, worker.Stop())
	require.NoError(t, worker.Stop())
}

func TestWorkerManagerDrainsQueue(t *testing.T) {
	jobRepo := newJobRepo(t)
	reconciler := &recordingReconciler{}
	for i := 0; i < 5; i++ {
		enqueue(t, jobRepo, models.JobTypePullRequestEvent, openedPayload)
	}

	manager := NewWorkerManager(jobRepo, reconciler, ManagerConfig{
		PullRequestWorkers:  3,
		IssueCommentWorkers: 1,
		PollInterval:        5 * time.Millisecond,
	})
	require.NoError(t, manager.StartAll(context.Background()))
	assert.Error(t, manager.StartAll(context.Background()), "cannot start twice")

	require.Eventually(t, func() bool {
		counts, err := jobRepo.CountByStatus()
		return err == nil && counts[models.JobStatusCompleted] == 5
	}, 5*time.Second, 10*time.Millisecond)

	assert.Len(t, manager.GetWorkerStatus(), 4)
	assert.Equal(t, 5, reconciler.count(), "each job is reconciled once")

	require.NoError(t, manager.StopAll())
	for id, running := range manager.GetWorkerStatus() {
		assert.False(t, running, "worker %s should be stopped", id)
	}
}
