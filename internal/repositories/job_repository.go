package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/alimgiray/reviewgate/internal/models"
)

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, job_type, status, delivery_id, payload, error_message, worker_id, started_at, completed_at, created_at, updated_at`

func scanJob(row rowScanner) (*models.Job, error) {
	job := &models.Job{}
	var payload string
	err := row.Scan(
		&job.ID,
		&job.JobType,
		&job.Status,
		&job.DeliveryID,
		&payload,
		&job.ErrorMessage,
		&job.WorkerID,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Payload = []byte(payload)
	return job, nil
}

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		job.ID,
		job.JobType,
		job.Status,
		job.DeliveryID,
		string(job.Payload),
		job.ErrorMessage,
		job.WorkerID,
		job.StartedAt,
		job.CompletedAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`
	return scanJob(r.db.QueryRow(query, id))
}

// GetByStatus retrieves all jobs with the given status, oldest first
func (r *JobRepository) GetByStatus(status models.JobStatus) ([]*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status = ? ORDER BY created_at ASC, rowid ASC`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// GetNextPendingJob claims the oldest pending job of a specific type (FIFO).
// The job is marked in-progress for workerID inside the same transaction, so
// two workers never claim the same job. Returns nil when nothing is pending.
func (r *JobRepository) GetNextPendingJob(jobType models.JobType, workerID string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = ? AND job_type = ?
		ORDER BY created_at ASC, rowid ASC
		LIMIT 1
	`

	job, err := scanJob(tx.QueryRow(query, models.JobStatusPending, jobType))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No pending jobs found
		}
		return nil, err
	}

	job.MarkStarted(workerID)
	job.UpdatedAt = time.Now().UTC()

	updateQuery := `
		UPDATE jobs
		SET status = ?, worker_id = ?, started_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := tx.Exec(updateQuery, job.Status, job.WorkerID, job.StartedAt, job.UpdatedAt, job.ID, models.JobStatusPending)
	if err != nil {
		return nil, err
	}
	if affected, err := result.RowsAffected(); err != nil || affected == 0 {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return job, nil
}

// Update persists the job's status fields
func (r *JobRepository) Update(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, worker_id = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status,
		job.ErrorMessage,
		job.WorkerID,
		job.StartedAt,
		job.CompletedAt,
		job.UpdatedAt,
		job.ID,
	)
	return err
}

// CountByStatus returns the number of jobs per status
func (r *JobRepository) CountByStatus() (map[models.JobStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.JobStatus]int)
	for rows.Next() {
		var status models.JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
