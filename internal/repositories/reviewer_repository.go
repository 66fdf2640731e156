package repositories

import (
	"database/sql"

	"github.com/alimgiray/reviewgate/internal/models"
)

type ReviewerRepository struct {
	db *sql.DB
}

func NewReviewerRepository(db *sql.DB) *ReviewerRepository {
	return &ReviewerRepository{db: db}
}

// querier is the subset of *sql.DB and *sql.Tx used for reads
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func queryReviewers(q querier, pullRequestID string) ([]*models.Reviewer, error) {
	query := `
		SELECT id, pull_request_id, login, state, created_at, updated_at
		FROM reviewers
		WHERE pull_request_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := q.Query(query, pullRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviewers []*models.Reviewer
	for rows.Next() {
		var reviewer models.Reviewer
		err := rows.Scan(
			&reviewer.ID, &reviewer.PullRequestID, &reviewer.Login, &reviewer.State,
			&reviewer.CreatedAt, &reviewer.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviewers = append(reviewers, &reviewer)
	}

	return reviewers, rows.Err()
}

// GetByPullRequestID returns reviewers in the order they were first recorded
func (r *ReviewerRepository) GetByPullRequestID(pullRequestID string) ([]*models.Reviewer, error) {
	return queryReviewers(r.db, pullRequestID)
}

func (r *ReviewerRepository) CountByPullRequestID(pullRequestID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM reviewers WHERE pull_request_id = ?`, pullRequestID).Scan(&count)
	return count, err
}
