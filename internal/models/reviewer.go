package models

import (
	"time"
)

// ReviewState is the checklist state of a single reviewer
type ReviewState string

const (
	ReviewStatePending   ReviewState = "pending_review"
	ReviewStateCompleted ReviewState = "completed_review"
)

// ReviewStateFor maps a checklist box to a review state
func ReviewStateFor(completed bool) ReviewState {
	if completed {
		return ReviewStateCompleted
	}
	return ReviewStatePending
}

// Reviewer is a login mentioned in a pull request checklist.
// Logins are unique (case-insensitively) per pull request.
type Reviewer struct {
	ID            string      `json:"id" db:"id"`
	PullRequestID string      `json:"pull_request_id" db:"pull_request_id"`
	Login         string      `json:"login" db:"login"`
	State         ReviewState `json:"state" db:"state"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}
