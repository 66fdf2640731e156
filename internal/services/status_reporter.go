package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/reviewgate/internal/models"
)

// Commit status states accepted by GitHub
const (
	CommitStateSuccess = "success"
	CommitStatePending = "pending"
	CommitStateFailure = "failure"
)

// DefaultStatusContext labels commit statuses when no context is configured
const DefaultStatusContext = "code-review/checklist"

// CommitStatusCreator submits a commit status to the hosting platform
type CommitStatusCreator interface {
	CreateCommitStatus(ctx context.Context, repository, sha string, status CommitStatus) error
}

// CommitState maps an aggregate pull request status to a commit status state.
// Unknown statuses map to failure so a merge is never unblocked by accident.
func CommitState(status models.PullRequestStatus) string {
	switch status {
	case models.PullRequestStatusApproved:
		return CommitStateSuccess
	case models.PullRequestStatusPendingReview:
		return CommitStatePending
	default:
		return CommitStateFailure
	}
}

// StatusReporter turns verdicts into commit statuses
type StatusReporter struct {
	creator   CommitStatusCreator
	context   string
	targetURL string
}

func NewStatusReporter(creator CommitStatusCreator, statusContext, targetURL string) *StatusReporter {
	if statusContext == "" {
		statusContext = DefaultStatusContext
	}
	return &StatusReporter{
		creator:   creator,
		context:   statusContext,
		targetURL: targetURL,
	}
}

// Report submits the verdict as a commit status on sha
func (r *StatusReporter) Report(ctx context.Context, repository, sha string, verdict Verdict) error {
	if sha == "" {
		return fmt.Errorf("cannot report status for %s: head commit is unknown", repository)
	}

	status := CommitStatus{
		State:       CommitState(verdict.Status),
		Description: verdict.Description,
		Context:     r.context,
		TargetURL:   r.targetURL,
	}

	if err := r.creator.CreateCommitStatus(ctx, repository, sha, status); err != nil {
		commitStatusCounter.WithLabelValues(status.State, "error").Inc()
		return err
	}

	commitStatusCounter.WithLabelValues(status.State, "ok").Inc()
	return nil
}
