package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/google/uuid"
)

type PullRequestRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewPullRequestRepository(db *sql.DB) *PullRequestRepository {
	return &PullRequestRepository{db: db}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const pullRequestColumns = `id, repository, number, status, head_sha, created_at, updated_at`

func scanPullRequest(row rowScanner) (*models.PullRequest, error) {
	var pr models.PullRequest
	err := row.Scan(
		&pr.ID, &pr.Repository, &pr.Number, &pr.Status, &pr.HeadSHA,
		&pr.CreatedAt, &pr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// GetByKey returns the pull request for a repository and number,
// or sql.ErrNoRows when it has not been recorded yet
func (r *PullRequestRepository) GetByKey(repository string, number int) (*models.PullRequest, error) {
	query := `SELECT ` + pullRequestColumns + ` FROM pull_requests WHERE repository = ? AND number = ?`
	return scanPullRequest(r.db.QueryRow(query, repository, number))
}

func (r *PullRequestRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM pull_requests`).Scan(&count)
	return count, err
}

// Save upserts the pull request by (repository, number) and replaces its
// reviewer set in a single transaction. Reviewer rows are upserted by
// (pull_request_id, login) and rows for logins missing from reviewers are
// deleted. On return pr carries its stored ID, timestamps and reviewers.
func (r *PullRequestRepository) Save(pr *models.PullRequest, reviewers []*models.Reviewer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	upsertPR := `
		INSERT INTO pull_requests (id, repository, number, status, head_sha, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository, number) DO UPDATE SET
			status = excluded.status,
			head_sha = excluded.head_sha,
			updated_at = excluded.updated_at
	`
	if _, err = tx.Exec(upsertPR, uuid.New().String(), pr.Repository, pr.Number, pr.Status, pr.HeadSHA, now, now); err != nil {
		return fmt.Errorf("failed to upsert pull request: %w", err)
	}

	stored, err := scanPullRequest(tx.QueryRow(
		`SELECT `+pullRequestColumns+` FROM pull_requests WHERE repository = ? AND number = ?`,
		pr.Repository, pr.Number,
	))
	if err != nil {
		return fmt.Errorf("failed to reload pull request: %w", err)
	}

	upsertReviewer := `
		INSERT INTO reviewers (id, pull_request_id, login, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(pull_request_id, login) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`
	logins := make([]any, 0, len(reviewers)+1)
	logins = append(logins, stored.ID)
	for _, reviewer := range reviewers {
		if _, err = tx.Exec(upsertReviewer, uuid.New().String(), stored.ID, reviewer.Login, reviewer.State, now, now); err != nil {
			return fmt.Errorf("failed to upsert reviewer %s: %w", reviewer.Login, err)
		}
		logins = append(logins, reviewer.Login)
	}

	deleteStale := `DELETE FROM reviewers WHERE pull_request_id = ?`
	if len(reviewers) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(reviewers)), ", ")
		deleteStale += ` AND login NOT IN (` + placeholders + `)`
	}
	if _, err = tx.Exec(deleteStale, logins...); err != nil {
		return fmt.Errorf("failed to remove stale reviewers: %w", err)
	}

	storedReviewers, err := queryReviewers(tx, stored.ID)
	if err != nil {
		return fmt.Errorf("failed to reload reviewers: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	*pr = *stored
	pr.Reviewers = storedReviewers
	return nil
}
