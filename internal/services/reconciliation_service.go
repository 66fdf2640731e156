package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/pkg/logger"
	"github.com/sirupsen/logrus"
)

// PullRequestFetcher loads the current state of a pull request from GitHub
type PullRequestFetcher interface {
	GetPullRequest(ctx context.Context, repository string, number int) (*PullRequestDetails, error)
}

type CollaboratorChecker interface {
	IsCollaborator(ctx context.Context, repository, login string) (bool, error)
}

type IssueUpdater interface {
	UpdateIssue(ctx context.Context, repository string, number int, update IssueUpdate) error
}

// PullRequestStore persists pull requests and their reviewer sets
type PullRequestStore interface {
	Find(repository string, number int) (*models.PullRequest, error)
	CreateOrUpdate(input PullRequestInput) (*models.PullRequest, error)
}

type Evaluator interface {
	Evaluate(repository string, reviewers []ChecklistItem) (Verdict, error)
}

type Reporter interface {
	Report(ctx context.Context, repository, sha string, verdict Verdict) error
}

// ReconciliationOption configures optional reconciliation steps
type ReconciliationOption func(*ReconciliationService)

// WithCollaboratorFilter drops checklist mentions of users who are not
// collaborators on the repository before they are counted
func WithCollaboratorFilter(checker CollaboratorChecker) ReconciliationOption {
	return func(s *ReconciliationService) {
		s.collaborators = checker
	}
}

// WithReviewerAssignment assigns pending reviewers to the pull request after
// its status has been reported
func WithReviewerAssignment(updater IssueUpdater) ReconciliationOption {
	return func(s *ReconciliationService) {
		s.assigner = updater
	}
}

// ReconciliationService brings the stored review state of a pull request and
// its commit status in line with the checklist in its description
type ReconciliationService struct {
	fetcher       PullRequestFetcher
	store         PullRequestStore
	policy        Evaluator
	reporter      Reporter
	collaborators CollaboratorChecker
	assigner      IssueUpdater
}

func NewReconciliationService(fetcher PullRequestFetcher, store PullRequestStore, policy Evaluator, reporter Reporter, opts ...ReconciliationOption) *ReconciliationService {
	s := &ReconciliationService{
		fetcher:  fetcher,
		store:    store,
		policy:   policy,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile handles one webhook event
func (s *ReconciliationService) Reconcile(ctx context.Context, event models.Event) error {
	log := logger.WithFields(logrus.Fields{
		"event":        event.Name(),
		"pull_request": event.Key().String(),
	})

	switch e := event.(type) {
	case models.OpenedEvent:
		exists, err := s.exists(e.PullRequest)
		if err != nil {
			return err
		}
		// a redelivered or late opened payload may be older than what is stored
		if exists {
			return s.reconcileFromGitHub(ctx, log, e.Name(), e.PullRequest)
		}
		return s.reconcile(ctx, log, e.Name(), e.PullRequest, e.Body, e.HeadSHA, false)
	case models.SynchronizeEvent:
		return s.reconcileFromGitHub(ctx, log, e.Name(), e.PullRequest)
	case models.CommentEvent:
		log = log.WithField("commenter", e.Commenter)
		return s.reconcileFromGitHub(ctx, log, e.Name(), e.PullRequest)
	case models.OtherEvent:
		log.WithField("action", e.Action).Debug("Ignoring event")
		reconciliationCounter.WithLabelValues(e.Name(), "ignored").Inc()
		return nil
	default:
		return fmt.Errorf("unhandled event %T", event)
	}
}

// reconcileFromGitHub refetches the body and head commit, since the delivery
// may be older than the pull request's current state
func (s *ReconciliationService) reconcileFromGitHub(ctx context.Context, log *logrus.Entry, eventName string, key models.PullRequestKey) error {
	details, err := s.fetcher.GetPullRequest(ctx, key.Repository, key.Number)
	if err != nil {
		return err
	}

	exists, err := s.exists(key)
	if err != nil {
		return err
	}
	return s.reconcile(ctx, log, eventName, key, details.Body, details.HeadSHA, exists)
}

func (s *ReconciliationService) reconcile(ctx context.Context, log *logrus.Entry, eventName string, key models.PullRequestKey, body, headSHA string, exists bool) error {
	reviewers, err := s.filterCollaborators(ctx, key.Repository, ParseChecklist(body))
	if err != nil {
		return err
	}

	verdict, err := s.policy.Evaluate(key.Repository, reviewers)
	if err != nil {
		return err
	}

	log = log.WithFields(logrus.Fields{
		"status":    verdict.Status,
		"reviewers": len(reviewers),
		"head_sha":  headSHA,
	})

	// A pull request that never listed enough reviewers is not recorded
	if !exists && verdict.Status == models.PullRequestStatusFailure {
		log.Info("Not enough reviewers on unrecorded pull request, reporting without saving")
		if err := s.reporter.Report(ctx, key.Repository, headSHA, verdict); err != nil {
			return err
		}
		reconciliationCounter.WithLabelValues(eventName, string(verdict.Status)).Inc()
		return nil
	}

	pr, err := s.store.CreateOrUpdate(PullRequestInput{
		Repository: key.Repository,
		Number:     key.Number,
		HeadSHA:    headSHA,
		Status:     verdict.Status,
		Reviewers:  reviewers,
	})
	if err != nil {
		return err
	}

	if err := s.reporter.Report(ctx, key.Repository, headSHA, verdict); err != nil {
		return err
	}

	if s.assigner != nil {
		if err := s.assignPending(ctx, pr); err != nil {
			return err
		}
	}

	reconciliationCounter.WithLabelValues(eventName, string(verdict.Status)).Inc()
	log.Info("Pull request reconciled")
	return nil
}

func (s *ReconciliationService) exists(key models.PullRequestKey) (bool, error) {
	_, err := s.store.Find(key.Repository, key.Number)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *ReconciliationService) filterCollaborators(ctx context.Context, repository string, reviewers []ChecklistItem) ([]ChecklistItem, error) {
	if s.collaborators == nil {
		return reviewers, nil
	}

	filtered := make([]ChecklistItem, 0, len(reviewers))
	for _, reviewer := range reviewers {
		ok, err := s.collaborators.IsCollaborator(ctx, repository, reviewer.Login)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.WithFields(logrus.Fields{
				"repository": repository,
				"login":      reviewer.Login,
			}).Info("Ignoring reviewer who is not a collaborator")
			continue
		}
		filtered = append(filtered, reviewer)
	}
	return filtered, nil
}

func (s *ReconciliationService) assignPending(ctx context.Context, pr *models.PullRequest) error {
	pending := pr.PendingReviewers()
	assignees := make([]string, 0, len(pending))
	for _, reviewer := range pending {
		assignees = append(assignees, reviewer.Login)
	}
	return s.assigner.UpdateIssue(ctx, pr.Repository, pr.Number, IssueUpdate{Assignees: assignees})
}
