package services

import (
	"fmt"
	"strings"

	"github.com/alimgiray/reviewgate/internal/models"
)

const (
	DescriptionNotEnoughReviewers = "Not enough reviewers requested"
	DescriptionReviewComplete     = "Code review complete"
	DescriptionReviewPending      = "Not all reviewers have approved"
)

// Verdict is the aggregate review outcome for a pull request
type Verdict struct {
	Status      models.PullRequestStatus
	Description string
}

// EvaluateReviewers computes the aggregate status of a reviewer set against a
// minimum reviewer count. Logins are counted once each, so repeated mentions
// never satisfy the minimum. A minimum below one is treated as one.
func EvaluateReviewers(reviewers []ChecklistItem, minimum int) Verdict {
	if minimum < 1 {
		minimum = 1
	}

	// last mention wins, matching UniqueReviewers
	unique := make(map[string]bool, len(reviewers))
	for _, reviewer := range reviewers {
		unique[strings.ToLower(reviewer.Login)] = reviewer.Completed
	}

	if len(unique) < minimum {
		return Verdict{
			Status:      models.PullRequestStatusFailure,
			Description: DescriptionNotEnoughReviewers,
		}
	}

	for _, completed := range unique {
		if !completed {
			return Verdict{
				Status:      models.PullRequestStatusPendingReview,
				Description: DescriptionReviewPending,
			}
		}
	}

	return Verdict{
		Status:      models.PullRequestStatusApproved,
		Description: DescriptionReviewComplete,
	}
}

// ThresholdProvider resolves the minimum reviewer count for a repository
type ThresholdProvider interface {
	MinimumReviewers(repository string) (int, error)
}

// ReviewPolicy evaluates reviewer sets using per-repository thresholds
type ReviewPolicy struct {
	thresholds ThresholdProvider
}

func NewReviewPolicy(thresholds ThresholdProvider) *ReviewPolicy {
	return &ReviewPolicy{thresholds: thresholds}
}

// Evaluate resolves the repository's minimum and evaluates reviewers against it
func (p *ReviewPolicy) Evaluate(repository string, reviewers []ChecklistItem) (Verdict, error) {
	minimum, err := p.thresholds.MinimumReviewers(repository)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to resolve minimum reviewers for %s: %w", repository, err)
	}
	return EvaluateReviewers(reviewers, minimum), nil
}
