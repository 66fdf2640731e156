package models

import (
	"time"
)

// PullRequestStatus is the aggregate review verdict stored for a pull request
type PullRequestStatus string

const (
	PullRequestStatusPendingReview PullRequestStatus = "pending_review"
	PullRequestStatusApproved      PullRequestStatus = "approved"
	PullRequestStatusFailure       PullRequestStatus = "failure"
)

// PullRequest is a pull request tracked for checklist review,
// keyed by repository full name and number
type PullRequest struct {
	ID         string            `json:"id" db:"id"`
	Repository string            `json:"repository" db:"repository"`
	Number     int               `json:"number" db:"number"`
	Status     PullRequestStatus `json:"status" db:"status"`
	HeadSHA    string            `json:"head_sha" db:"head_sha"`
	Reviewers  []*Reviewer       `json:"reviewers,omitempty" db:"-"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// PendingReviewers returns the reviewers that have not completed their review
func (pr *PullRequest) PendingReviewers() []*Reviewer {
	return pr.reviewersIn(ReviewStatePending)
}

// CompletedReviewers returns the reviewers that have completed their review
func (pr *PullRequest) CompletedReviewers() []*Reviewer {
	return pr.reviewersIn(ReviewStateCompleted)
}

func (pr *PullRequest) reviewersIn(state ReviewState) []*Reviewer {
	var reviewers []*Reviewer
	for _, reviewer := range pr.Reviewers {
		if reviewer.State == state {
			reviewers = append(reviewers, reviewer)
		}
	}
	return reviewers
}
