package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alimgiray/reviewgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStatusCreator struct {
	mock.Mock
}

func (m *mockStatusCreator) CreateCommitStatus(ctx context.Context, repository, sha string, status CommitStatus) error {
	args := m.Called(ctx, repository, sha, status)
	return args.Error(0)
}

func TestCommitState(t *testing.T) {
	assert.Equal(t, CommitStateSuccess, CommitState(models.PullRequestStatusApproved))
	assert.Equal(t, CommitStatePending, CommitState(models.PullRequestStatusPendingReview))
	assert.Equal(t, CommitStateFailure, CommitState(models.PullRequestStatusFailure))
	assert.Equal(t, CommitStateFailure, CommitState("unknown"))
}

func TestStatusReporterReport(t *testing.T) {
	creator := new(mockStatusCreator)
	creator.On("CreateCommitStatus", mock.Anything, "octo/widgets", "abc123", CommitStatus{
		State:       CommitStateSuccess,
		Description: DescriptionReviewComplete,
		Context:     "ci/review",
		TargetURL:   "https://example.com/review",
	}).Return(nil).Once()

	reporter := NewStatusReporter(creator, "ci/review", "https://example.com/review")
	err := reporter.Report(context.Background(), "octo/widgets", "abc123", Verdict{
		Status:      models.PullRequestStatusApproved,
		Description: DescriptionReviewComplete,
	})

	require.NoError(t, err)
	creator.AssertExpectations(t)
}

func TestStatusReporterDefaultContext(t *testing.T) {
	creator := new(mockStatusCreator)
	creator.On("CreateCommitStatus", mock.Anything, "octo/widgets", "abc123", mock.MatchedBy(func(status CommitStatus) bool {
		return status.Context == DefaultStatusContext && status.State == CommitStateFailure && status.TargetURL == ""
	})).Return(nil).Once()

	err := NewStatusReporter(creator, "", "").Report(context.Background(), "octo/widgets", "abc123", Verdict{
		Status:      models.PullRequestStatusFailure,
		Description: DescriptionNotEnoughReviewers,
	})

	require.NoError(t, err)
	creator.AssertExpectations(t)
}

func TestStatusReporterPropagatesErrors(t *testing.T) {
	creator := new(mockStatusCreator)
	creator.On("CreateCommitStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("rate limited"))

	err := NewStatusReporter(creator, "", "").Report(context.Background(), "octo/widgets", "abc123", Verdict{
		Status: models.PullRequestStatusPendingReview,
	})
	assert.EqualError(t, err, "rate limited")
}

func TestStatusReporterRequiresSHA(t *testing.T) {
	creator := new(mockStatusCreator)

	err := NewStatusReporter(creator, "", "").Report(context.Background(), "octo/widgets", "", Verdict{})
	assert.Error(t, err)
	creator.AssertNotCalled(t, "CreateCommitStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
