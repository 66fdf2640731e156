package services

import (
	"fmt"
	"slices"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/alimgiray/reviewgate/internal/repositories"
)

// PullRequestInput is the desired state of a pull request after parsing its body
type PullRequestInput struct {
	Repository string
	Number     int
	HeadSHA    string
	// Status defaults to pending_review when empty
	Status    models.PullRequestStatus
	Reviewers []ChecklistItem
}

type PullRequestService struct {
	pullRequestRepo *repositories.PullRequestRepository
	reviewerRepo    *repositories.ReviewerRepository
}

func NewPullRequestService(pullRequestRepo *repositories.PullRequestRepository, reviewerRepo *repositories.ReviewerRepository) *PullRequestService {
	return &PullRequestService{
		pullRequestRepo: pullRequestRepo,
		reviewerRepo:    reviewerRepo,
	}
}

// Find returns the recorded pull request with its reviewers. The error wraps
// sql.ErrNoRows when the pull request has not been recorded.
func (s *PullRequestService) Find(repository string, number int) (*models.PullRequest, error) {
	pr, err := s.pullRequestRepo.GetByKey(repository, number)
	if err != nil {
		return nil, fmt.Errorf("failed to find pull request %s#%d: %w", repository, number, err)
	}

	reviewers, err := s.reviewerRepo.GetByPullRequestID(pr.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviewers for %s#%d: %w", repository, number, err)
	}
	pr.Reviewers = reviewers

	return pr, nil
}

// CreateOrUpdate records the pull request and makes its reviewer set exactly
// the unique logins of input.Reviewers. Safe to call repeatedly with the same
// input.
func (s *PullRequestService) CreateOrUpdate(input PullRequestInput) (*models.PullRequest, error) {
	status := input.Status
	if status == "" {
		status = models.PullRequestStatusPendingReview
	}

	pr := &models.PullRequest{
		Repository: input.Repository,
		Number:     input.Number,
		Status:     status,
		HeadSHA:    input.HeadSHA,
	}

	unique := UniqueReviewers(slices.Values(input.Reviewers))

	reviewers := make([]*models.Reviewer, 0, len(unique))
	for _, item := range unique {
		reviewers = append(reviewers, &models.Reviewer{
			Login: item.Login,
			State: models.ReviewStateFor(item.Completed),
		})
	}

	if err := s.pullRequestRepo.Save(pr, reviewers); err != nil {
		return nil, fmt.Errorf("failed to save pull request %s#%d: %w", input.Repository, input.Number, err)
	}

	return pr, nil
}
